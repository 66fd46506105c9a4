package guard

import (
	"context"
	"fmt"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/logging"
	"github.com/thoreinstein/claudeguard/internal/oplog"
	"github.com/thoreinstein/claudeguard/internal/risk"
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

// maxCollisions is how many suffixed ids are tried when the timestamp id is taken.
const maxCollisions = 99

// Result describes a CreateBackup call.
type Result struct {
	// Taken is false when backups are disabled and nothing was done.
	Taken bool

	BackupID  string
	RiskLevel risk.Level

	// Files lists the project-relative paths that were copied.
	Files []string

	// Warnings holds a *errors.PartialCopyWarning for each skipped file.
	Warnings []error
}

// CreateBackup snapshots files before operation runs.
//
// Files that cannot be copied are skipped and reported in Result.Warnings.
// The steps run in order: copy files, capture the git revision, write the
// metadata, append to the operation log. A failure in a later step does not
// undo the earlier ones; a backup directory without metadata is ignored by
// listings and removed by count-based cleanup.
func (m *Manager) CreateBackup(ctx context.Context, operation string, details snapshot.Details, files []string) (Result, error) {
	logger := m.opLogger("create")

	if !m.cfg.Backup.Enabled {
		logger.Debug("backups disabled, skipping", "operation", operation)
		return Result{}, nil
	}

	now := m.clock.Now()
	level := m.classifier.Classify(operation)
	logger = logger.With("operation", operation, logging.KeyRisk, level)

	if m.cfg.RiskDetection.Enabled && m.cfg.RiskDetection.WarnOnHighRisk && level.AtLeast(risk.High) {
		logger.Warn("high-risk operation", "files", len(files))
	}

	id, copied, warnings, err := m.createUnique(snapshot.FormatID(now), files)
	if err != nil {
		return Result{}, err
	}
	logger = logger.With("backup_id", id)
	for _, w := range warnings {
		logger.Warn("file not backed up", "error", w)
	}

	rec := &snapshot.Record{
		BackupID:         id,
		Timestamp:        snapshot.NewStamp(now),
		OperationType:    operation,
		OperationDetails: details,
		RiskLevel:        level,
		AffectedFiles:    copied,
		ProjectRoot:      m.layout.ProjectRoot,
	}
	if rev, ok := m.revision(ctx, m.layout.ProjectRoot); ok {
		rec.GitCommit = rev
	}

	res := Result{
		Taken:     true,
		BackupID:  id,
		RiskLevel: level,
		Files:     copied,
		Warnings:  warnings,
	}

	if err := m.store.WriteMetadata(rec); err != nil {
		return res, err
	}

	entry := oplog.Entry{
		Timestamp:     now,
		BackupID:      id,
		OperationType: operation,
		RiskLevel:     level,
		FilesCount:    len(copied),
	}
	if err := m.log.Append(entry); err != nil {
		return res, err
	}

	logger.Info("backup created", "files", len(copied), "skipped", len(warnings))

	if m.cfg.Backup.AutoCleanup {
		if _, err := m.cleanup(logger, CleanupOptions{}); err != nil {
			logger.Warn("auto cleanup failed", "error", err)
		}
	}

	return res, nil
}

// createUnique creates the backup directory under base, falling back to
// suffixed ids while base is taken.
func (m *Manager) createUnique(base string, files []string) (string, []string, []error, error) {
	id := base
	for n := 1; ; n++ {
		copied, warnings, err := m.store.Create(id, files, m.layout.ProjectRoot)
		if err == nil {
			return id, copied, warnings, nil
		}
		if !errors.Is(err, snapshot.ErrIDExists) {
			return "", nil, nil, err
		}
		if n > maxCollisions {
			return "", nil, nil, errors.StorageError(err, fmt.Sprintf("no free backup id after %d attempts", maxCollisions))
		}
		id = snapshot.CollisionID(base, n)
	}
}
