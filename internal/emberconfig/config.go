// Package emberconfig loads ember.toml, the CLI's optional project
// manifest, and provides the --color/isTerminal helpers shared by
// cmd/ember's subcommands. Config is optional; the VM's built-in
// defaults (ember.DefaultOptions) match what an absent or partial
// ember.toml implies.
package emberconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ember-lang/ember/internal/ember"
)

// GC mirrors the subset of ember.Options a project can override from
// ember.toml's [gc] table.
type GC struct {
	InitialLimitBytes uint64  `toml:"initial_limit_bytes"`
	GrowthFactor      float64 `toml:"growth_factor"`
}

// VM mirrors [vm]: frame and table tuning that spec.md leaves
// implementation-defined.
type VM struct {
	MaxFrames    int     `toml:"max_frames"`
	TableMaxLoad float64 `toml:"table_max_load"`
	Trace        bool    `toml:"trace"`
}

// Config is the parsed shape of an ember.toml manifest.
type Config struct {
	GC GC `toml:"gc"`
	VM VM `toml:"vm"`
}

// Load parses path, if it exists. A missing file is not an error: it
// returns a zero-value Config, and ToOptions falls back to
// ember.DefaultOptions() field by field.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("emberconfig: stat %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("emberconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ToOptions merges cfg over ember.DefaultOptions(), leaving any field
// cfg leaves at its zero value on the default. Trace is the exception:
// it always takes cfg's value, so an unset trace means false.
func (cfg Config) ToOptions() ember.Options {
	opts := ember.DefaultOptions()
	if cfg.GC.InitialLimitBytes != 0 {
		opts.InitialGCLimit = cfg.GC.InitialLimitBytes
	}
	if cfg.GC.GrowthFactor != 0 {
		opts.GCGrowthFactor = cfg.GC.GrowthFactor
	}
	if cfg.VM.MaxFrames != 0 {
		opts.MaxFrames = cfg.VM.MaxFrames
	}
	if cfg.VM.TableMaxLoad != 0 {
		opts.TableMaxLoad = cfg.VM.TableMaxLoad
	}
	opts.Trace = cfg.VM.Trace
	return opts
}
