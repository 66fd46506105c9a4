// Package oplog keeps the append-only operation history of a project.
//
// Every backup adds one JSON line to operation_history.jsonl. The file is
// never rewritten; cleanup does not touch it, so the line count is the
// number of operations ever recorded.
package oplog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/internal/risk"
)

// maxLineSize bounds a single entry when reading the log back.
const maxLineSize = 1 << 20

// Entry is one line of the operation history.
type Entry struct {
	Timestamp     time.Time  `json:"timestamp"`
	BackupID      string     `json:"backup_id"`
	OperationType string     `json:"operation_type"`
	RiskLevel     risk.Level `json:"risk_level"`
	FilesCount    int        `json:"files_count"`
}

// Log is the operation history file.
type Log struct {
	path string
}

// New returns the log stored at path.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the location of the log file.
func (l *Log) Path() string {
	return l.path
}

// Append writes e as a single line. The line is written with one call on a
// file opened for appending and synced before returning.
func (l *Log) Append(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encoding log entry")
	}
	line = append(line, '\n')

	if err := paths.EnsureDir(filepath.Dir(l.path), 0); err != nil {
		return errors.StorageError(err, "creating log directory")
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening operation log")
	}

	if _, err := f.Write(line); err != nil {
		f.Close()
		return errors.Wrap(err, "appending to operation log")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "syncing operation log")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing operation log")
	}
	return nil
}

// Count returns the number of newline-terminated lines. A missing log
// counts as zero.
func (l *Log) Count() (int, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "opening operation log")
	}
	defer f.Close()

	var (
		count int
		buf   = make([]byte, 32*1024)
	)
	for {
		n, err := f.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, errors.Wrap(err, "reading operation log")
		}
	}
}

// Entries calls fn for each entry in file order. Lines that do not decode
// are skipped and counted in skipped. Iteration stops at the first error
// returned by fn.
func (l *Log) Entries(fn func(Entry) error) (skipped int, err error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "opening operation log")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		if err := fn(e); err != nil {
			return skipped, err
		}
	}
	if err := scanner.Err(); err != nil {
		return skipped, errors.Wrap(err, "reading operation log")
	}
	return skipped, nil
}
