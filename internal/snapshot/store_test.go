package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/paths"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	project := t.TempDir()
	return NewStore(paths.Layout{ProjectRoot: project}.BackupRoot()), project
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestFormatID(t *testing.T) {
	ts := time.Date(2026, 1, 19, 14, 30, 12, 4512345, time.UTC)
	assert.Equal(t, "backup_20260119_143012_004512", FormatID(ts))
	assert.Equal(t, "backup_20260119_143012_004512_01", CollisionID(FormatID(ts), 1))
}

func TestCollisionID_SortsBetween(t *testing.T) {
	base := FormatID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	next := FormatID(time.Date(2026, 1, 1, 0, 0, 0, 1000, time.UTC))

	assert.Less(t, base, CollisionID(base, 1))
	assert.Less(t, CollisionID(base, 1), CollisionID(base, 2))
	assert.Less(t, CollisionID(base, 99), next)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("backup_20260101_000000_000000"))
	assert.False(t, ValidID("backup_"))
	assert.False(t, ValidID("snapshot_1"))
	assert.False(t, ValidID("backup_../../etc"))
	assert.False(t, ValidID(""))
}

func TestStore_CreateCopiesFiles(t *testing.T) {
	s, project := newTestStore(t)
	writeFile(t, project, "main.go", "package main\n")
	nested := writeFile(t, project, "internal/app/app.go", "package app\n")

	mtime := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(nested, mtime, mtime))

	id := "backup_20260101_000000_000000"
	copied, warnings, err := s.Create(id, []string{"main.go", nested}, project)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"main.go", "internal/app/app.go"}, copied)

	data, err := os.ReadFile(s.FilePath(id, "internal/app/app.go"))
	require.NoError(t, err)
	assert.Equal(t, "package app\n", string(data))

	info, err := os.Stat(s.FilePath(id, "internal/app/app.go"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestStore_CreateSkipsBadInputs(t *testing.T) {
	s, project := newTestStore(t)
	writeFile(t, project, "ok.txt", "ok")
	require.NoError(t, os.MkdirAll(filepath.Join(project, "adir"), 0o755))
	outside := writeFile(t, t.TempDir(), "outside.txt", "nope")
	writeFile(t, project, ".claudeguard/config.yaml", "backup: {}\n")

	files := []string{"missing.txt", "adir", outside, ".claudeguard/config.yaml", "ok.txt", "./ok.txt"}
	copied, warnings, err := s.Create("backup_20260101_000000_000000", files, project)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok.txt"}, copied)
	require.Len(t, warnings, 4)

	skipped := make([]string, 0, len(warnings))
	for _, w := range warnings {
		var pcw *errors.PartialCopyWarning
		require.True(t, errors.As(w, &pcw), "warning %v", w)
		skipped = append(skipped, pcw.Path)
	}
	assert.Equal(t, []string{"missing.txt", "adir", outside, ".claudeguard/config.yaml"}, skipped)

	_, err = os.Stat(filepath.Join(s.Dir("backup_20260101_000000_000000"), "adir"))
	assert.True(t, os.IsNotExist(err), "skipped directories are not created")
}

func TestStore_CreateEmptyFileList(t *testing.T) {
	s, project := newTestStore(t)

	copied, warnings, err := s.Create("backup_20260101_000000_000000", nil, project)
	require.NoError(t, err)
	assert.NotNil(t, copied)
	assert.Empty(t, copied)
	assert.Empty(t, warnings)
	assert.True(t, s.Exists("backup_20260101_000000_000000"))
}

func TestStore_CreateExistingID(t *testing.T) {
	s, project := newTestStore(t)
	id := "backup_20260101_000000_000000"

	_, _, err := s.Create(id, nil, project)
	require.NoError(t, err)

	_, _, err = s.Create(id, nil, project)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIDExists))
}

func TestStore_CreateUnwritableRoot(t *testing.T) {
	project := t.TempDir()
	blocker := writeFile(t, project, "blocker", "file where a directory should be")
	s := NewStore(filepath.Join(blocker, "backups"))

	_, _, err := s.Create("backup_20260101_000000_000000", nil, project)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorage))
}

func TestStore_MetadataRoundTrip(t *testing.T) {
	s, project := newTestStore(t)
	writeFile(t, project, "a.txt", "a")
	id := "backup_20260101_000000_000000"

	copied, _, err := s.Create(id, []string{"a.txt"}, project)
	require.NoError(t, err)

	_, err = s.Read(id)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "no metadata yet")

	var details Details
	details.SetString("file_path", "a.txt")
	rec := &Record{
		BackupID:         id,
		Timestamp:        NewStamp(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		OperationType:    "Write",
		OperationDetails: details,
		RiskLevel:        "MEDIUM",
		AffectedFiles:    copied,
		GitCommit:        "0123abcd",
		ProjectRoot:      project,
	}
	require.NoError(t, s.WriteMetadata(rec))

	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, rec.BackupID, got.BackupID)
	assert.Equal(t, rec.AffectedFiles, got.AffectedFiles)
	assert.Equal(t, rec.GitCommit, got.GitCommit)
	assert.Equal(t, []string{"file_path"}, got.OperationDetails.Keys())
}

func TestStore_ReadCorruptMetadata(t *testing.T) {
	s, project := newTestStore(t)
	id := "backup_20260101_000000_000000"
	_, _, err := s.Create(id, nil, project)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(id), paths.MetadataFile), []byte("{"), 0o644))

	_, err = s.Read(id)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errors.ErrNotFound))
}

func TestStore_EnumerateSorted(t *testing.T) {
	s, project := newTestStore(t)
	ids := []string{
		"backup_20260103_000000_000000",
		"backup_20260101_000000_000000",
		"backup_20260101_000000_000000_01",
		"backup_20260102_000000_000000",
	}
	for _, id := range ids {
		_, _, err := s.Create(id, nil, project)
		require.NoError(t, err)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "unrelated"), 0o755))
	writeFile(t, s.Root(), "backup_file_not_dir", "x")

	got, err := s.Enumerate()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"backup_20260101_000000_000000",
		"backup_20260101_000000_000000_01",
		"backup_20260102_000000_000000",
		"backup_20260103_000000_000000",
	}, got)
}

func TestStore_EnumerateMissingRoot(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "none"))
	got, err := s.Enumerate()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_DeleteAndSize(t *testing.T) {
	s, project := newTestStore(t)
	writeFile(t, project, "a.txt", "12345")
	writeFile(t, project, "b/c.txt", "123")
	id := "backup_20260101_000000_000000"

	_, _, err := s.Create(id, []string{"a.txt", "b/c.txt"}, project)
	require.NoError(t, err)

	size, err := s.Size(id)
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	total, err := s.TotalSize()
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	_, err = s.ModTime(id)
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	assert.False(t, s.Exists(id))

	err = s.Delete(id)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = s.Size(id)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestStore_TotalSizeMissingRoot(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "none"))
	total, err := s.TotalSize()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStore_CreateSkipsRootMetadataName(t *testing.T) {
	s, project := newTestStore(t)
	writeFile(t, project, "metadata.json", `{"user":"data"}`)
	writeFile(t, project, "config/metadata.json", `{"nested":true}`)
	id := "backup_20260101_000000_000000"

	copied, warnings, err := s.Create(id, []string{"metadata.json", "config/metadata.json"}, project)
	require.NoError(t, err)
	assert.Equal(t, []string{"config/metadata.json"}, copied, "nested files with the name are fine")
	require.Len(t, warnings, 1)

	var pcw *errors.PartialCopyWarning
	require.True(t, errors.As(warnings[0], &pcw))
	assert.Equal(t, "metadata.json", pcw.Path)

	_, err = os.Stat(filepath.Join(s.Dir(id), paths.MetadataFile))
	assert.True(t, os.IsNotExist(err), "the metadata slot stays free")
}

func TestStore_ReadLegacyMetadata(t *testing.T) {
	s, project := newTestStore(t)
	id := "backup_20240101_120000_123456"
	_, _, err := s.Create(id, nil, project)
	require.NoError(t, err)

	legacy := `{
  "backup_id": "backup_20240101_120000_123456",
  "timestamp": "20240101_120000_123456",
  "operation_type": "Edit",
  "operation_details": {"file_path": "a.txt"},
  "risk_level": "MEDIUM",
  "affected_files": ["a.txt"],
  "git_commit": null,
  "project_root": "/work/project"
}`
	writeFile(t, s.Dir(id), paths.MetadataFile, legacy)

	rec, err := s.Read(id)
	require.NoError(t, err)
	want := time.Date(2024, 1, 1, 12, 0, 0, 123456000, time.Local)
	assert.True(t, rec.Timestamp.Equal(want), "got %v", rec.Timestamp)
	assert.Equal(t, "20240101_120000_123456", rec.Timestamp.String())
	assert.Equal(t, []string{"a.txt"}, rec.AffectedFiles)
	assert.Empty(t, rec.GitCommit)
}
