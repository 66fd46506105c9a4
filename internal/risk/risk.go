// Package risk assigns a risk tier to the operation that triggered a backup.
package risk

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Level is a risk tier. Its string form is what gets persisted.
type Level string

// Risk tiers, lowest to highest.
const (
	Low      Level = "LOW"
	Medium   Level = "MEDIUM"
	High     Level = "HIGH"
	Critical Level = "CRITICAL"
)

// Levels lists every tier in ascending order.
var Levels = []Level{Low, Medium, High, Critical}

// ErrUnknownLevel is returned by ParseLevel for unrecognized input.
var ErrUnknownLevel = errors.New("unknown risk level")

// Rank orders tiers: LOW=0 through CRITICAL=3. Unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case Low:
		return 0
	case Medium:
		return 1
	case High:
		return 2
	case Critical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether l is the same tier as other or higher.
func (l Level) AtLeast(other Level) bool {
	return l.Rank() >= other.Rank()
}

func (l Level) String() string {
	return string(l)
}

// ParseLevel decodes a tier name, ignoring case and surrounding space.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if l.Rank() < 0 {
		return "", errors.Wrapf(ErrUnknownLevel, "%q", s)
	}
	return l, nil
}

// Classifier holds the lookup tables used by Classify.
type Classifier struct {
	// Critical markers match anywhere in the operation, ignoring case.
	Critical []string

	// Prefix tables are checked in order Low, Medium, High and match
	// case-sensitively at the start of the operation.
	Low    []string
	Medium []string
	High   []string

	// Fallback is returned when nothing matches.
	Fallback Level
}

// Default returns the built-in tables.
func Default() Classifier {
	return Classifier{
		Critical: []string{"rm -rf", "DROP", "DELETE", "TRUNCATE"},
		Low:      []string{"Read", "Glob", "Grep", "WebSearch", "WebFetch"},
		Medium:   []string{"Write", "Edit", "NotebookEdit"},
		High:     []string{"Bash", "Task"},
		Fallback: Medium,
	}
}

// Classify returns the tier for operation. It never fails.
func (c Classifier) Classify(operation string) Level {
	upper := strings.ToUpper(operation)
	for _, marker := range c.Critical {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return Critical
		}
	}

	tables := []struct {
		level    Level
		prefixes []string
	}{
		{Low, c.Low},
		{Medium, c.Medium},
		{High, c.High},
	}
	for _, table := range tables {
		for _, prefix := range table.prefixes {
			if strings.HasPrefix(operation, prefix) {
				return table.level
			}
		}
	}

	if c.Fallback == "" {
		return Medium
	}
	return c.Fallback
}

// Classify uses the default tables.
func Classify(operation string) Level {
	return Default().Classify(operation)
}
