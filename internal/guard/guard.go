package guard

import (
	"log/slog"

	"github.com/thoreinstein/claudeguard/internal/config"
	"github.com/thoreinstein/claudeguard/internal/git"
	"github.com/thoreinstein/claudeguard/internal/logging"
	"github.com/thoreinstein/claudeguard/internal/oplog"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/internal/risk"
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

// Manager creates, restores and prunes the backups of one project.
type Manager struct {
	cfg        *config.Config
	layout     paths.Layout
	store      *snapshot.Store
	log        *oplog.Log
	logger     *slog.Logger
	clock      Clock
	ids        IDGenerator
	classifier risk.Classifier
	revision   git.RevisionFunc

	projectRoot string
}

// Option configures a Manager.
type Option func(*Manager)

// WithProjectRoot sets the project directory. The default is the working directory.
func WithProjectRoot(dir string) Option {
	return func(m *Manager) {
		m.projectRoot = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock sets the time source used for ids, timestamps and ages.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithClassifier replaces the default risk tables.
func WithClassifier(c risk.Classifier) Option {
	return func(m *Manager) {
		m.classifier = c
	}
}

// WithRevisionFunc replaces git revision capture.
func WithRevisionFunc(fn git.RevisionFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.revision = fn
		}
	}
}

// WithIDGenerator sets the generator for operation correlation ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) {
		if g != nil {
			m.ids = g
		}
	}
}

// New creates a Manager. A nil cfg means [config.Default].
func New(cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	m := &Manager{
		cfg:        cfg,
		logger:     logging.NewDiscard(),
		clock:      RealClock{},
		ids:        UUIDGenerator{},
		classifier: risk.Default(),
		revision:   git.Revision,
	}
	for _, opt := range opts {
		opt(m)
	}

	layout, err := paths.NewLayout(m.projectRoot)
	if err != nil {
		return nil, err
	}
	m.layout = layout
	m.store = snapshot.NewStore(layout.BackupRoot())
	m.log = oplog.New(layout.OperationLogPath())

	return m, nil
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Layout returns the project's on-disk layout.
func (m *Manager) Layout() paths.Layout {
	return m.layout
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() *snapshot.Store {
	return m.store
}

// Classify returns the risk tier the manager would record for operation.
func (m *Manager) Classify(operation string) risk.Level {
	return m.classifier.Classify(operation)
}

func (m *Manager) opLogger(op string) *slog.Logger {
	return m.logger.With(logging.KeyOp, op, logging.KeyOpID, m.ids.New())
}
