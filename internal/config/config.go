// Package config loads the optional TOML configuration file that supplies
// defaults for the command-line tool.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds tool-wide defaults read from a TOML file. Every field is
// optional; flags on the command line override anything set here.
type Config struct {
	ModelName     string              `toml:"model_name"`
	DefaultSource string              `toml:"default_source"`
	DefaultTarget string              `toml:"default_target"`
	Introspection IntrospectionConfig `toml:"introspection"`
}

// IntrospectionConfig scopes database extraction.
type IntrospectionConfig struct {
	Tables        []string `toml:"tables"`
	ExcludeTables []string `toml:"exclude_tables"`
}

// Load reads a TOML config file. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if len(cfg.Introspection.Tables) > 0 && len(cfg.Introspection.ExcludeTables) > 0 {
		return nil, fmt.Errorf("introspection.tables and introspection.exclude_tables are mutually exclusive")
	}

	return &cfg, nil
}

// FilterTables applies the introspection table selection to a list of
// discovered table names.
func (c *IntrospectionConfig) FilterTables(names []string) []string {
	if len(c.Tables) > 0 {
		keep := make(map[string]bool, len(c.Tables))
		for _, t := range c.Tables {
			keep[t] = true
		}
		var out []string
		for _, n := range names {
			if keep[n] {
				out = append(out, n)
			}
		}
		return out
	}
	if len(c.ExcludeTables) > 0 {
		drop := make(map[string]bool, len(c.ExcludeTables))
		for _, t := range c.ExcludeTables {
			drop[t] = true
		}
		var out []string
		for _, n := range names {
			if !drop[n] {
				out = append(out, n)
			}
		}
		return out
	}
	return names
}
