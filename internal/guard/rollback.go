package guard

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/pkg/fileutil"
)

// LatestID returns the id of the most recent backup directory. It does not
// skip a newest backup whose metadata is missing or unreadable; reading that
// backup fails instead of silently falling back to an older one.
func (m *Manager) LatestID() (string, error) {
	ids, err := m.store.Enumerate()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errors.NotFoundf("no backups in %s", m.store.Root())
	}
	return ids[len(ids)-1], nil
}

// RollbackResult describes a Rollback call.
type RollbackResult struct {
	BackupID string

	// Restored lists the files written back, in record order.
	Restored []string

	// Missing lists recorded files that were absent from the backup.
	Missing []string

	Message string
}

// Rollback restores the files recorded in backup id over the live project.
// An empty id selects the most recent backup, see LatestID.
//
// Restoring stops at the first file that cannot be written and returns a
// *errors.RestoreError naming it; files restored before it stay restored.
// An unknown id fails with errors.ErrNotFound before anything is written.
func (m *Manager) Rollback(ctx context.Context, id string) (RollbackResult, error) {
	logger := m.opLogger("rollback")

	if id == "" {
		latest, err := m.LatestID()
		if err != nil {
			return RollbackResult{}, err
		}
		id = latest
	}

	rec, err := m.store.Read(id)
	if err != nil {
		return RollbackResult{}, err
	}
	logger = logger.With("backup_id", id)

	res := RollbackResult{BackupID: id}
	for _, rel := range rec.AffectedFiles {
		if err := ctx.Err(); err != nil {
			return res, &errors.RestoreError{Path: rel, Err: err}
		}

		src := m.store.FilePath(id, rel)
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			logger.Debug("file missing from backup", "path", rel)
			res.Missing = append(res.Missing, rel)
			continue
		}

		dst := filepath.Join(m.layout.ProjectRoot, filepath.FromSlash(rel))
		if _, err := paths.RelativeTo(m.layout.ProjectRoot, dst); err != nil {
			return res, &errors.RestoreError{Path: rel, Err: err}
		}

		if _, err := fileutil.CopyFile(src, dst); err != nil {
			logger.Error("restore failed", "path", rel, "restored", len(res.Restored), "error", err)
			return res, &errors.RestoreError{Path: rel, Err: err}
		}
		res.Restored = append(res.Restored, rel)
	}

	res.Message = fmt.Sprintf("Restored %d files from %s", len(res.Restored), id)
	logger.Info("rollback complete", "restored", len(res.Restored), "missing", len(res.Missing))
	return res, nil
}
