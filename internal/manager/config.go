package manager

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"mtbench/internal/catalog"
	"mtbench/internal/translator"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 5 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Catalog *catalog.Catalog
	Backend translator.Backend

	DefaultModel    string
	DefaultTask     string
	DefaultQuantize string

	MaxQueueDepth int
	MaxWait       time.Duration
	DrainTimeout  time.Duration
	// MaxInstances caps prepared translators; 0 means unlimited.
	MaxInstances int

	// BaseContext bounds preparations, which outlive the request that
	// started them. nil means context.Background().
	BaseContext context.Context

	// Out receives translator preparation status lines; nil means os.Stdout.
	Out       io.Writer
	Logger    *zerolog.Logger
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:        StateReady,
		catalog:      cfg.Catalog,
		backend:      cfg.Backend,
		defaultModel: cfg.DefaultModel,
		defaultTask:  cfg.DefaultTask,
		defaultQuant: cfg.DefaultQuantize,
		maxInstances: cfg.MaxInstances,
		instances:    make(map[Key]*Instance),
		baseCtx:      cfg.BaseContext,
		out:          cfg.Out,
		publisher:    cfg.Publisher,
		startTime:    time.Now(),
	}
	if m.catalog == nil {
		m.catalog = catalog.Default()
	}
	if m.baseCtx == nil {
		m.baseCtx = context.Background()
	}
	if m.out == nil {
		m.out = os.Stdout
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	} else {
		m.log = zerolog.Nop()
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	return m
}
