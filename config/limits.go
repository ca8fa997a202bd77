// Package config holds the resource-limit knobs a caller passes on to
// table.CompileWithLimit, recovery.Recover, and runtime.New: maximum
// automaton states, maximum error-repair search expansions, and maximum
// parser stack depth. No other package reads this one. None of
// these are mechanically derivable from a grammar, so they are left to the
// caller rather than hardcoded.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/gazelle/gxerrors"
)

// Default limits, chosen generously enough to never bind on the grammars in
// this repo's own test suite.
const (
	DefaultMaxStates             = 10000
	DefaultMaxRecoveryExpansions = 2000
	DefaultMaxStackDepth         = 10000
)

// Limits bounds the three growth points a malformed or adversarial grammar
// (or input) could otherwise exhaust without limit: automaton states,
// error-repair search expansions, and parser stack depth.
type Limits struct {
	// MaxStates bounds the number of automaton states
	// table.CompileWithLimit accepts; the count is checked once the
	// automaton has been fully built.
	MaxStates int `toml:"max_states"`

	// MaxRecoveryExpansions bounds how many search nodes recovery.Recover
	// will expand before reporting failure; passed through as that
	// function's budget parameter.
	MaxRecoveryExpansions int `toml:"max_recovery_expansions"`

	// MaxStackDepth bounds the runtime parser's combined state/value stack
	// height; passed through as runtime.New's maxStackDepth parameter.
	MaxStackDepth int `toml:"max_stack_depth"`
}

// Default returns the built-in Limits, used whenever no TOML file overrides
// them.
func Default() Limits {
	return Limits{
		MaxStates:             DefaultMaxStates,
		MaxRecoveryExpansions: DefaultMaxRecoveryExpansions,
		MaxStackDepth:         DefaultMaxStackDepth,
	}
}

// Load reads Limits from a TOML file at path, starting from Default() so a
// file that only overrides one field leaves the others at their defaults.
func Load(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, err
	}
	return Parse(data)
}

// Parse decodes TOML-formatted data into Limits, starting from Default().
func Parse(data []byte) (Limits, error) {
	lim := Default()
	if err := toml.Unmarshal(data, &lim); err != nil {
		return Limits{}, err
	}
	if err := lim.Validate(); err != nil {
		return Limits{}, err
	}
	return lim, nil
}

// Validate reports a gxerrors.TableError if any limit is non-positive; a
// zero or negative limit would either disable the check it's meant to
// enforce or reject every grammar outright, neither of which a caller chose
// on purpose.
func (l Limits) Validate() error {
	if l.MaxStates <= 0 {
		return gxerrors.Table("config: max_states must be positive, got %d", l.MaxStates)
	}
	if l.MaxRecoveryExpansions <= 0 {
		return gxerrors.Table("config: max_recovery_expansions must be positive, got %d", l.MaxRecoveryExpansions)
	}
	if l.MaxStackDepth <= 0 {
		return gxerrors.Table("config: max_stack_depth must be positive, got %d", l.MaxStackDepth)
	}
	return nil
}
