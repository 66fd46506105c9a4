package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/thoreinstein/claudeguard/internal/errors"
)

// copyData moves the file body; tests replace it to simulate I/O failures.
var copyData = io.Copy

// CopyFile copies the regular file src to dst, creating dst's parent
// directories. The copy keeps src's permission bits and modification time.
// It returns the number of bytes copied.
//
// The data goes to a temporary file beside dst which is renamed over dst
// once complete, so a failed copy leaves any existing dst untouched.
func CopyFile(src, dst string) (n int64, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source file")
	}
	if !info.Mode().IsRegular() {
		return 0, errors.Newf("%s is not a regular file", src)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(err, "creating parent directory")
	}

	tmp, err := os.CreateTemp(dir, ".claudeguard-copy-*.tmp")
	if err != nil {
		return 0, errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err = copyData(tmp, srcFile)
	if err != nil {
		return n, errors.Wrap(err, "copying file")
	}
	if err = tmp.Sync(); err != nil {
		return n, errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return n, errors.Wrap(err, "closing temp file")
	}

	if err = os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return n, errors.Wrap(err, "setting permissions")
	}
	if err = os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return n, errors.Wrap(err, "setting modification time")
	}

	if err = os.Rename(tmpName, dst); err != nil {
		return n, errors.Wrap(err, "renaming temp file")
	}
	return n, nil
}
