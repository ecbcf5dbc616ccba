package options

import "talus/internal/skiplist"

// Default configuration values (spec §6).
const (
	DefaultMemtableThreshold = 1000
	DefaultDurableWrites     = true
)

// Default returns the package defaults. DirPath is left empty — the caller
// must always supply one.
func Default() Options {
	return Options{
		MemtableThreshold: DefaultMemtableThreshold,
		P:                 skiplist.DefaultP,
		MaxLevel:          skiplist.DefaultMaxLevel,
		DurableWrites:     DefaultDurableWrites,
	}
}
