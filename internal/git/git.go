// Package git reads source-control state for backup metadata.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// RevisionTimeout bounds how long Revision waits for git.
const RevisionTimeout = 5 * time.Second

// ErrNotRepository indicates the directory has no .git entry.
var ErrNotRepository = errors.New("not a git repository")

// RevisionFunc returns the current revision of dir, if there is one.
type RevisionFunc func(ctx context.Context, dir string) (string, bool)

// IsRepository reports whether dir has a .git entry. Worktrees and
// submodules use a .git file, so either kind is accepted.
func IsRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Revision returns the commit checked out in dir. It reports false when dir
// is not a repository, git is unavailable or fails, or RevisionTimeout
// elapses. It never returns an error; the revision is optional metadata.
func Revision(ctx context.Context, dir string) (string, bool) {
	rev, err := Head(ctx, dir)
	if err != nil {
		return "", false
	}
	return rev, true
}

// Head runs git rev-parse HEAD in dir.
func Head(ctx context.Context, dir string) (string, error) {
	if !IsRepository(dir) {
		return "", errors.Wrapf(ErrNotRepository, "%s", dir)
	}

	ctx, cancel := context.WithTimeout(ctx, RevisionTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "HEAD")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), "git rev-parse timed out")
		}
		return "", errors.Wrapf(err, "git rev-parse failed: %s", strings.TrimSpace(stderr.String()))
	}

	rev := strings.TrimSpace(stdout.String())
	if rev == "" {
		return "", errors.New("git rev-parse returned no revision")
	}
	return rev, nil
}
