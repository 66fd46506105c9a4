package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudeguard/internal/config"
	"github.com/thoreinstein/claudeguard/internal/risk"
)

func TestVerify_NoOperations(t *testing.T) {
	f := newFixture(t, nil)

	report, err := f.mgr.Verify()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, report.ComplianceRate, 0.001)
	assert.Equal(t, StatusCompliant, report.Status)
	assert.Zero(t, report.TotalOperations)
	assert.True(t, report.Timestamp.Equal(epoch))
}

func TestVerify_MissingBackups(t *testing.T) {
	f := newFixture(t, nil)
	var ids []string
	for _, op := range []string{"Read", "Edit", "Write", "Bash", "DROP TABLE x"} {
		ids = append(ids, f.backup(t, op).BackupID)
	}
	require.NoError(t, f.mgr.Store().Delete(ids[0]))

	report, err := f.mgr.Verify()
	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalOperations)
	assert.Equal(t, 4, report.TotalBackups)
	assert.InDelta(t, 80.0, report.ComplianceRate, 0.001)
	assert.Equal(t, StatusNonCompliant, report.Status)
	assert.False(t, report.MostlyCompliant())
	assert.Equal(t, map[risk.Level]int{
		risk.Low:      1,
		risk.Medium:   2,
		risk.High:     1,
		risk.Critical: 1,
	}, report.RiskBreakdown)
}

func TestVerify_Threshold(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Verification.ComplianceThreshold = 75
	})
	var ids []string
	for range 4 {
		ids = append(ids, f.backup(t, "Edit").BackupID)
	}
	require.NoError(t, f.mgr.Store().Delete(ids[0]))

	report, err := f.mgr.Verify()
	require.NoError(t, err)
	assert.InDelta(t, 75.0, report.ComplianceRate, 0.001)
	assert.Equal(t, StatusCompliant, report.Status)
	assert.InDelta(t, 75.0, report.Threshold, 0.001)
}

func TestComplianceReport_MostlyCompliant(t *testing.T) {
	assert.True(t, ComplianceReport{Status: StatusNonCompliant, ComplianceRate: 95}.MostlyCompliant())
	assert.False(t, ComplianceReport{Status: StatusCompliant, ComplianceRate: 100}.MostlyCompliant())
	assert.False(t, ComplianceReport{Status: StatusNonCompliant, ComplianceRate: 89.9}.MostlyCompliant())
}

func TestStatus_Empty(t *testing.T) {
	f := newFixture(t, nil)

	st, err := f.mgr.Status()
	require.NoError(t, err)
	assert.True(t, st.Enabled)
	assert.Zero(t, st.TotalBackups)
	assert.Zero(t, st.TotalOperations)
	assert.Zero(t, st.StorageBytes)
}

func TestListBackups_LimitAndSkipsUnreadable(t *testing.T) {
	f := newFixture(t, nil)
	var ids []string
	for range 3 {
		ids = append(ids, f.backup(t, "Edit").BackupID)
	}
	// Newest directory, but without metadata.
	_, _, err := f.mgr.Store().Create("backup_20990101_000000_000000", nil, f.project)
	require.NoError(t, err)

	got, err := f.mgr.ListBackups(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].BackupID)
	assert.Equal(t, ids[1], got[1].BackupID)

	all, err := f.mgr.ListBackups(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name string
		st   Status
		want CostEstimate
	}{
		{
			name: "no operations",
			st:   Status{StorageBytes: 2 * bytesPerMB},
			want: CostEstimate{StorageMB: 2},
		},
		{
			name: "projects growth",
			st:   Status{StorageBytes: 10 * bytesPerMB, TotalOperations: 4},
			want: CostEstimate{
				StorageMB:         10,
				AvgMBPerOperation: 2.5,
				MonthlyGrowthMB:   250,
				YearlyGrowthMB:    3000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateCost(tt.st))
		})
	}
}
