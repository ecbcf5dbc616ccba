// Package options configures the engine: the on-disk directory, the
// memtable flush threshold, skip-list shape, and the WAL's durability mode.
package options

import (
	"strings"

	"go.uber.org/zap"
)

// Options holds the engine's recognized configuration (spec §6).
type Options struct {
	// DirPath is the directory the engine owns. Created if absent.
	DirPath string

	// MemtableThreshold is the live-entry count at which a flush is
	// triggered automatically from Put.
	MemtableThreshold int

	// P is the skip-list promotion probability.
	P float64

	// MaxLevel is the skip-list maximum height.
	MaxLevel int

	// DurableWrites controls whether WAL appends force a disk sync.
	DurableWrites bool

	// Logger receives lifecycle events (open, flush, close). Nil means the
	// engine logs nothing.
	Logger *zap.SugaredLogger
}

// Option mutates Options during construction.
type Option func(*Options)

// WithDefaults applies every package default. Callers normally start with
// this and layer overrides on top.
func WithDefaults() Option {
	return func(o *Options) {
		def := Default()
		*o = def
	}
}

// WithDirPath sets the engine's data directory.
func WithDirPath(path string) Option {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.DirPath = path
		}
	}
}

// WithMemtableThreshold sets the entry count that triggers an automatic
// flush. Non-positive values are ignored.
func WithMemtableThreshold(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MemtableThreshold = n
		}
	}
}

// WithPromotionProbability sets the skip-list's node-promotion probability.
// Out-of-range values (outside (0,1)) are ignored.
func WithPromotionProbability(p float64) Option {
	return func(o *Options) {
		if p > 0 && p < 1 {
			o.P = p
		}
	}
}

// WithMaxLevel sets the skip-list's maximum tower height. Non-positive
// values are ignored.
func WithMaxLevel(maxLevel int) Option {
	return func(o *Options) {
		if maxLevel > 0 {
			o.MaxLevel = maxLevel
		}
	}
}

// WithDurableWrites sets whether WAL appends force a disk sync.
func WithDurableWrites(durable bool) Option {
	return func(o *Options) {
		o.DurableWrites = durable
	}
}

// WithLogger injects a logger for engine lifecycle events, in place of the
// default no-op logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// New builds Options starting from the package defaults and applying opts
// in order.
func New(opts ...Option) Options {
	o := Default()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
