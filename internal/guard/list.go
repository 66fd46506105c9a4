package guard

import (
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

// ListBackups returns up to limit backups, newest first. A limit of zero or
// less returns all of them. Backups whose metadata cannot be read are left out.
func (m *Manager) ListBackups(limit int) ([]snapshot.Record, error) {
	ids, err := m.store.Enumerate()
	if err != nil {
		return nil, err
	}

	records := make([]snapshot.Record, 0, min(len(ids), max(limit, 0)))
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && len(records) >= limit {
			break
		}
		rec, err := m.store.Read(ids[i])
		if err != nil {
			m.logger.Debug("skipping unreadable backup", "backup_id", ids[i], "error", err)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}
