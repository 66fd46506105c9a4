package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		op   string
		want Level
	}{
		{"Read", Low},
		{"ReadFile", Low},
		{"Glob", Low},
		{"Grep", Low},
		{"WebSearch", Low},
		{"WebFetch", Low},
		{"Write", Medium},
		{"Edit", Medium},
		{"NotebookEdit", Medium},
		{"Bash", High},
		{"Task", High},
		{"Bash: ls -la", High},
		{"CustomTool", Medium},
		{"", Medium},
		{"read", Medium}, // prefixes are case-sensitive
		{"Bash: rm -rf /tmp", Critical},
		{"Bash: RM -RF build", Critical},
		{"Read then drop table users", Critical},
		{"Task: delete old branches", Critical},
		{"SQL: truncate logs", Critical},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.op))
		})
	}
}

func TestClassify_CriticalOutranksPrefix(t *testing.T) {
	for _, prefix := range []string{"Read", "Write", "Bash", "Unknown"} {
		assert.Equal(t, Critical, Classify(prefix+" DROP TABLE x"), prefix)
	}
}

func TestClassifier_CustomTables(t *testing.T) {
	c := Classifier{
		Critical: []string{"format"},
		High:     []string{"Deploy"},
		Fallback: Low,
	}

	assert.Equal(t, Critical, c.Classify("FORMAT disk"))
	assert.Equal(t, High, c.Classify("Deploy prod"))
	assert.Equal(t, Low, c.Classify("Bash"))
}

func TestClassifier_ZeroValueFallsBackToMedium(t *testing.T) {
	var c Classifier
	assert.Equal(t, Medium, c.Classify("anything"))
}

func TestLevel_Rank(t *testing.T) {
	for i, l := range Levels {
		assert.Equal(t, i, l.Rank(), l)
	}
	assert.Equal(t, -1, Level("EXTREME").Rank())

	assert.True(t, Critical.AtLeast(High))
	assert.True(t, High.AtLeast(High))
	assert.False(t, Medium.AtLeast(High))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"LOW", Low, false},
		{"high", High, false},
		{" Critical ", Critical, false},
		{"severe", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownLevel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
