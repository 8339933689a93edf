// Package config loads arithprobe settings from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/arithprobe/internal/failctl"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "arithprobe.toml"

// EnvDB overrides the database path.
const EnvDB = "ARITHPROBE_DB"

// Config is the arithprobe configuration.
type Config struct {
	// DB is the SQLite database. Empty disables recording.
	DB string `toml:"db"`

	// Go is the toolchain binary used by probes.
	Go string `toml:"go"`

	// Package is probed when a probe names none.
	Package string `toml:"package"`

	// Probes replaces the built-in CUE matrix when set.
	Probes string `toml:"probes"`

	Failure Failure `toml:"failure"`
}

// Failure holds the failure-injection inputs.
type Failure struct {
	ForceFail bool `toml:"force_fail"`

	// MarkerPath empty means the default location; "off" disables the check.
	MarkerPath string `toml:"marker_path"`
}

// Default returns the settings used without a config file.
func Default() *Config {
	return &Config{
		DB:      "arithprobe.db",
		Go:      "go",
		Package: "./internal/arith",
	}
}

// Load reads path on top of Default. An empty path tries DefaultFile and
// tolerates its absence; a named file must exist. Environment overrides are
// applied last.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if err := decodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if v, ok := lookup(EnvDB); ok {
		cfg.DB = strings.TrimSpace(v)
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Control builds the failure control from the [failure] table with the
// environment on top.
func (c *Config) Control(lookup func(string) (string, bool)) failctl.Control {
	base := failctl.Control{
		ForceFail:  c.Failure.ForceFail || failctl.BuildForced,
		MarkerPath: c.MarkerPath(),
	}
	return base.Override(lookup)
}

// MarkerPath resolves the configured marker location, "" when disabled.
func (c *Config) MarkerPath() string {
	switch p := strings.TrimSpace(c.Failure.MarkerPath); p {
	case "":
		return failctl.DefaultMarkerPath()
	case failctl.MarkerOff:
		return ""
	default:
		return p
	}
}
