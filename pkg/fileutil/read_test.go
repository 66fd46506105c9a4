package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudeguard/internal/errors"
)

func TestReadFileWithLimit(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(small, []byte(`{"backup_id":"backup_1"}`), 0o644))

	data, err := ReadFileWithLimit(small, 1024)
	require.NoError(t, err)
	assert.JSONEq(t, `{"backup_id":"backup_1"}`, string(data))

	big := filepath.Join(dir, "huge.json")
	require.NoError(t, os.WriteFile(big, bytes.Repeat([]byte("x"), 65), 0o644))

	_, err = ReadFileWithLimit(big, 64)
	assert.True(t, errors.Is(err, ErrFileTooLarge), "got %v", err)

	data, err = ReadFileWithLimit(big, 65)
	require.NoError(t, err, "a file of exactly limit bytes is read")
	assert.Len(t, data, 65)

	_, err = ReadFileWithLimit(filepath.Join(dir, "absent"), 10)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}
