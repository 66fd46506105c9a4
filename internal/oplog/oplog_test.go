package oplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/risk"
)

func TestLog_CountMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "logs", "operation_history.jsonl"))

	n, err := l.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	skipped, err := l.Entries(func(Entry) error {
		t.Fatal("no entries expected")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, skipped)
}

func TestLog_AppendAndRead(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "logs", "operation_history.jsonl"))
	ts := time.Date(2026, 1, 19, 14, 30, 0, 0, time.UTC)

	entries := []Entry{
		{Timestamp: ts, BackupID: "backup_1", OperationType: "Edit", RiskLevel: risk.Medium, FilesCount: 1},
		{Timestamp: ts.Add(time.Second), BackupID: "backup_2", OperationType: "Bash: rm -rf x", RiskLevel: risk.Critical, FilesCount: 3},
	}
	for _, e := range entries {
		require.NoError(t, l.Append(e))
	}

	n, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t,
		`{"timestamp":"2026-01-19T14:30:00Z","backup_id":"backup_1","operation_type":"Edit","risk_level":"MEDIUM","files_count":1}`,
		lines[0])

	var got []Entry
	skipped, err := l.Entries(func(e Entry) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, "backup_2", got[1].BackupID)
	assert.Equal(t, risk.Critical, got[1].RiskLevel)
	assert.True(t, got[0].Timestamp.Equal(ts))
}

func TestLog_EntriesSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operation_history.jsonl")
	content := `{"backup_id":"backup_1","risk_level":"LOW","files_count":1}
not json

{"backup_id":"backup_2","risk_level":"HIGH","files_count":2}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	l := New(path)

	var ids []string
	skipped, err := l.Entries(func(e Entry) error {
		ids = append(ids, e.BackupID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"backup_1", "backup_2"}, ids)

	// Count is a raw line count and includes the blank and malformed lines.
	n, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestLog_EntriesStopsOnCallbackError(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "operation_history.jsonl"))
	for range 3 {
		require.NoError(t, l.Append(Entry{BackupID: "backup_x"}))
	}

	stop := errors.New("stop")
	calls := 0
	_, err := l.Entries(func(Entry) error {
		calls++
		return stop
	})
	assert.True(t, errors.Is(err, stop))
	assert.Equal(t, 1, calls)
}

func TestLog_CountIgnoresUnterminatedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operation_history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n{}\n{\"partial\""), 0o644))

	n, err := New(path).Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
