package guard

import (
	"time"

	"github.com/thoreinstein/claudeguard/internal/oplog"
	"github.com/thoreinstein/claudeguard/internal/risk"
)

// Compliance statuses.
const (
	StatusCompliant    = "compliant"
	StatusNonCompliant = "non_compliant"
)

// mostlyCompliantRate is the rate above which a non-compliant store is
// reported as mostly compliant.
const mostlyCompliantRate = 90.0

// bytesPerMB converts storage sizes for reports.
const bytesPerMB = 1024 * 1024

// Status summarizes the backup store.
type Status struct {
	Enabled         bool
	TotalBackups    int
	TotalOperations int
	StorageBytes    int64
	BackupRoot      string
	LogPath         string
}

// StorageMB returns StorageBytes in mebibytes.
func (s Status) StorageMB() float64 {
	return float64(s.StorageBytes) / bytesPerMB
}

// Status reports the number of backups and operations and the disk usage.
func (m *Manager) Status() (Status, error) {
	ids, err := m.store.Enumerate()
	if err != nil {
		return Status{}, err
	}
	ops, err := m.log.Count()
	if err != nil {
		return Status{}, err
	}
	size, err := m.store.TotalSize()
	if err != nil {
		return Status{}, err
	}

	return Status{
		Enabled:         m.cfg.Backup.Enabled,
		TotalBackups:    len(ids),
		TotalOperations: ops,
		StorageBytes:    size,
		BackupRoot:      m.store.Root(),
		LogPath:         m.log.Path(),
	}, nil
}

// ComplianceReport compares recorded operations with existing backups.
type ComplianceReport struct {
	Timestamp       time.Time          `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	TotalOperations int                `json:"total_operations" yaml:"total_operations" toml:"total_operations"`
	TotalBackups    int                `json:"total_backups" yaml:"total_backups" toml:"total_backups"`
	ComplianceRate  float64            `json:"compliance_rate" yaml:"compliance_rate" toml:"compliance_rate"`
	Threshold       float64            `json:"threshold" yaml:"threshold" toml:"threshold"`
	Status          string             `json:"status" yaml:"status" toml:"status"`
	RiskBreakdown   map[risk.Level]int `json:"risk_breakdown" yaml:"risk_breakdown" toml:"risk_breakdown"`
}

// Compliant reports whether the rate meets the threshold.
func (r ComplianceReport) Compliant() bool {
	return r.Status == StatusCompliant
}

// MostlyCompliant reports a non-compliant store whose rate is still high.
func (r ComplianceReport) MostlyCompliant() bool {
	return !r.Compliant() && r.ComplianceRate >= mostlyCompliantRate
}

// Verify builds a compliance report. The rate is backups per recorded
// operation as a percentage, and 100 when nothing has been recorded.
func (m *Manager) Verify() (ComplianceReport, error) {
	st, err := m.Status()
	if err != nil {
		return ComplianceReport{}, err
	}

	rate := 100.0
	if st.TotalOperations > 0 {
		rate = float64(st.TotalBackups) / float64(st.TotalOperations) * 100
	}

	breakdown := make(map[risk.Level]int, len(risk.Levels))
	skipped, err := m.log.Entries(func(e oplog.Entry) error {
		breakdown[e.RiskLevel]++
		return nil
	})
	if err != nil {
		return ComplianceReport{}, err
	}
	if skipped > 0 {
		m.logger.Warn("operation log has unreadable lines", "count", skipped)
	}

	threshold := m.cfg.Verification.ComplianceThreshold
	status := StatusNonCompliant
	if rate >= threshold {
		status = StatusCompliant
	}

	return ComplianceReport{
		Timestamp:       m.clock.Now(),
		TotalOperations: st.TotalOperations,
		TotalBackups:    st.TotalBackups,
		ComplianceRate:  rate,
		Threshold:       threshold,
		Status:          status,
		RiskBreakdown:   breakdown,
	}, nil
}

// CostEstimate projects storage growth from current usage.
type CostEstimate struct {
	StorageMB         float64
	AvgMBPerOperation float64
	MonthlyGrowthMB   float64
	YearlyGrowthMB    float64
}

// operationsPerMonth is the assumed rate used for growth projections.
const operationsPerMonth = 100

// EstimateCost projects growth assuming operationsPerMonth backups of the
// current average size. With no operations there is nothing to project.
func EstimateCost(st Status) CostEstimate {
	est := CostEstimate{StorageMB: st.StorageMB()}
	if st.TotalOperations > 0 {
		est.AvgMBPerOperation = est.StorageMB / float64(st.TotalOperations)
		est.MonthlyGrowthMB = est.AvgMBPerOperation * operationsPerMonth
		est.YearlyGrowthMB = est.MonthlyGrowthMB * 12
	}
	return est
}
