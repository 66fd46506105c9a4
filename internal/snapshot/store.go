package snapshot

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/pkg/fileutil"
)

// maxMetadataSize bounds how much of a metadata.json is read.
const maxMetadataSize = 16 << 20

// ErrIDExists is returned by Create when a backup directory with the
// requested id already exists.
var ErrIDExists = errors.New("backup id already exists")

// FormatID returns the identifier for a backup taken at t:
// backup_YYYYMMDD_HHMMSS_ffffff.
func FormatID(t time.Time) string {
	return fmt.Sprintf("%s%s_%06d", paths.BackupDirPrefix, t.Format("20060102_150405"), t.Nanosecond()/1000)
}

// CollisionID returns the n-th alternative for base (n >= 1). The suffix
// keeps alternatives sorting after base and before any later timestamp.
func CollisionID(base string, n int) string {
	return fmt.Sprintf("%s_%02d", base, n)
}

// ValidID reports whether id can name a backup directory.
func ValidID(id string) bool {
	return strings.HasPrefix(id, paths.BackupDirPrefix) &&
		!strings.ContainsAny(id, `/\`) &&
		id != paths.BackupDirPrefix
}

// Store reads and writes backups under a single root directory.
type Store struct {
	root string
}

// NewStore returns a Store rooted at root. The directory is created on the
// first Create.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the backup root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory of backup id.
func (s *Store) Dir(id string) string {
	return filepath.Join(s.root, id)
}

// FilePath returns where rel is stored inside backup id.
func (s *Store) FilePath(id, rel string) string {
	return filepath.Join(s.Dir(id), filepath.FromSlash(rel))
}

// Exists reports whether backup id has a directory.
func (s *Store) Exists(id string) bool {
	if !ValidID(id) {
		return false
	}
	info, err := os.Stat(s.Dir(id))
	return err == nil && info.IsDir()
}

// Create makes the directory for backup id and copies files into it.
//
// Relative entries in files are resolved against projectRoot. Each file is
// copied on its own: one that is missing, not a regular file, outside
// projectRoot or fails to copy is reported as a *errors.PartialCopyWarning
// and left out. copied lists the project-relative, slash-separated paths
// that were copied and verified.
//
// err is non-nil only when the backup directory itself cannot be created;
// ErrIDExists means the id is taken.
func (s *Store) Create(id string, files []string, projectRoot string) (copied []string, warnings []error, err error) {
	if !ValidID(id) {
		return nil, nil, errors.Newf("invalid backup id %q", id)
	}

	if err := paths.EnsureDir(s.root, 0); err != nil {
		return nil, nil, errors.StorageError(err, "creating backup root")
	}

	dir := s.Dir(id)
	if err := os.Mkdir(dir, paths.DefaultDirPerm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, nil, errors.Wrapf(ErrIDExists, "%s", id)
		}
		return nil, nil, errors.StorageError(err, "creating backup directory")
	}

	stateDir := filepath.Join(projectRoot, paths.StateDirName)
	seen := make(map[string]bool, len(files))
	copied = make([]string, 0, len(files))

	for _, file := range files {
		rel, err := s.copyOne(dir, file, projectRoot, stateDir)
		if err != nil {
			warnings = append(warnings, &errors.PartialCopyWarning{Path: file, Err: err})
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		copied = append(copied, rel)
	}

	return copied, warnings, nil
}

func (s *Store) copyOne(dir, file, projectRoot, stateDir string) (string, error) {
	src := file
	if !filepath.IsAbs(src) {
		src = filepath.Join(projectRoot, src)
	}
	src = filepath.Clean(src)

	rel, err := paths.RelativeTo(projectRoot, src)
	if err != nil {
		return "", err
	}
	if src == stateDir || strings.HasPrefix(src, stateDir+string(filepath.Separator)) {
		return "", errors.Newf("%s is inside the backup store", rel)
	}
	if rel == paths.MetadataFile {
		return "", errors.Newf("%s would collide with the backup's own metadata", rel)
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", errors.Wrap(err, "stat")
	}
	if !info.Mode().IsRegular() {
		return "", errors.New("not a regular file")
	}

	dst := filepath.Join(dir, rel)
	n, err := fileutil.CopyFile(src, dst)
	if err != nil {
		os.Remove(dst)
		return "", err
	}

	got, err := os.Stat(dst)
	if err != nil || got.Size() != n {
		os.Remove(dst)
		return "", errors.Newf("copy of %s could not be verified", rel)
	}

	return filepath.ToSlash(rel), nil
}

// WriteMetadata atomically writes rec as the metadata of its backup.
func (s *Store) WriteMetadata(rec *Record) error {
	if rec == nil || !ValidID(rec.BackupID) {
		return errors.New("metadata requires a valid backup id")
	}
	path := filepath.Join(s.Dir(rec.BackupID), paths.MetadataFile)
	if err := fileutil.AtomicWriteJSON(path, rec); err != nil {
		return errors.Wrapf(err, "writing metadata for %s", rec.BackupID)
	}
	return nil
}

// Enumerate returns the ids of all backup directories in ascending order,
// which is also creation order. A missing root yields no ids.
func (s *Store) Enumerate() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && ValidID(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Read loads the metadata of backup id. A backup without metadata is
// reported as errors.ErrNotFound.
func (s *Store) Read(id string) (*Record, error) {
	if !ValidID(id) {
		return nil, errors.NotFoundf("backup %q", id)
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(s.Dir(id), paths.MetadataFile), maxMetadataSize)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFoundf("backup %s", id)
		}
		return nil, errors.Wrapf(err, "reading metadata for %s", id)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "parsing metadata for %s", id)
	}
	if rec.BackupID == "" {
		rec.BackupID = id
	}
	return &rec, nil
}

// Delete removes backup id and everything in it.
func (s *Store) Delete(id string) error {
	if !s.Exists(id) {
		return errors.NotFoundf("backup %s", id)
	}
	if err := os.RemoveAll(s.Dir(id)); err != nil {
		return errors.StorageError(err, "removing backup "+id)
	}
	return nil
}

// ModTime returns the modification time of the backup directory.
func (s *Store) ModTime(id string) (time.Time, error) {
	info, err := os.Stat(s.Dir(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, errors.NotFoundf("backup %s", id)
		}
		return time.Time{}, errors.Wrapf(err, "stat backup %s", id)
	}
	return info.ModTime(), nil
}

// Size returns the total size in bytes of the files in backup id.
func (s *Store) Size(id string) (int64, error) {
	if !s.Exists(id) {
		return 0, errors.NotFoundf("backup %s", id)
	}
	return dirSize(s.Dir(id))
}

// TotalSize returns the size in bytes of everything under the root.
func (s *Store) TotalSize() (int64, error) {
	if _, err := os.Stat(s.root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return dirSize(s.root)
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "measuring %s", dir)
	}
	return total, nil
}
