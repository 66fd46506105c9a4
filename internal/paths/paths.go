package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is used for the state directory and the XDG config directory.
const AppName = "claudeguard"

// Layout names. Changing any of these breaks existing backup stores.
const (
	StateDirName    = "." + AppName
	BackupsDirName  = "backups"
	LogsDirName     = "logs"
	OperationLog    = "operation_history.jsonl"
	ConfigFileName  = "config.yaml"
	MetadataFile    = "metadata.json"
	BackupDirPrefix = "backup_"
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// ErrInvalidPath indicates the provided path is malformed or invalid.
var ErrInvalidPath = errors.New("invalid path")

// Layout describes where a project's backups, logs and config live.
type Layout struct {
	ProjectRoot string
}

// NewLayout returns the layout rooted at projectRoot, which is made absolute.
// An empty projectRoot means the current working directory.
func NewLayout(projectRoot string) (Layout, error) {
	if projectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Layout{}, errors.Wrap(err, "resolving working directory")
		}
		projectRoot = wd
	}
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return Layout{}, errors.Wrapf(ErrInvalidPath, "%s: %v", projectRoot, err)
	}
	return Layout{ProjectRoot: filepath.Clean(abs)}, nil
}

// StateDir returns <project>/.claudeguard.
func (l Layout) StateDir() string {
	return filepath.Join(l.ProjectRoot, StateDirName)
}

// BackupRoot returns <project>/.claudeguard/backups.
func (l Layout) BackupRoot() string {
	return filepath.Join(l.StateDir(), BackupsDirName)
}

// LogDir returns <project>/.claudeguard/logs.
func (l Layout) LogDir() string {
	return filepath.Join(l.StateDir(), LogsDirName)
}

// OperationLogPath returns <project>/.claudeguard/logs/operation_history.jsonl.
func (l Layout) OperationLogPath() string {
	return filepath.Join(l.LogDir(), OperationLog)
}

// ConfigPath returns <project>/.claudeguard/config.yaml.
func (l Layout) ConfigPath() string {
	return filepath.Join(l.StateDir(), ConfigFileName)
}

// Ensure creates the backups and logs directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.BackupRoot(), l.LogDir()} {
		if err := EnsureDir(dir, 0); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	return nil
}

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm is used. It is a no-op for existing directories.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// GlobalConfigDir returns <ConfigHome>/claudeguard, the user-wide config location.
// CLAUDEGUARD_CONFIG_DIR overrides it.
func GlobalConfigDir() string {
	if dir := os.Getenv("CLAUDEGUARD_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// RelativeTo returns path relative to root, rejecting paths outside root.
// Relative inputs are resolved against root first.
func RelativeTo(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil {
		return "", errors.Wrapf(ErrInvalidPath, "%s: %v", path, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrInvalidPath, "%s is outside %s", path, root)
	}
	return rel, nil
}
