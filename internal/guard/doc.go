// Package guard manages the backup lifecycle of a project.
//
// A [Manager] ties together the snapshot store, the operation log, the risk
// classifier and git revision capture:
//
//	mgr, err := guard.New(cfg, guard.WithProjectRoot(dir))
//	res, err := mgr.CreateBackup(ctx, "Edit", details, []string{"main.go"})
//	...
//	_, err = mgr.Rollback(ctx, res.BackupID)
//
// # Concurrency
//
// A Manager is not safe for concurrent use and there is no locking between
// processes. Running two writers (create, rollback or cleanup) against the
// same project at once can interleave their effects; a single writer per
// project is recommended.
package guard
