// Package config loads liger's ambient server configuration: a small set of
// knobs layered from defaults, an optional config file, and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Version is liger's reported server/CLI version.
const Version = "0.1.0"

// ServerConfig holds every tunable named in SPEC_FULL.md's AMBIENT STACK
// section. It is loaded once at startup and passed read-only to every
// component that needs it.
type ServerConfig struct {
	Strict              bool
	CrystalPath         string
	ScanDebounceSeconds int
	MaxProjectDepth      int
	MaxLibDepth          int
	MaxStdlibDepth       int
	OracleEnabled        bool
	OracleBinary         string
	OracleTimeoutSeconds int
}

// ScanDebounce returns the configured debounce as a time.Duration.
func (c ServerConfig) ScanDebounce() time.Duration {
	return time.Duration(c.ScanDebounceSeconds) * time.Second
}

// OracleTimeout returns the configured oracle timeout; zero means "no timeout".
func (c ServerConfig) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutSeconds) * time.Second
}

func defaults() ServerConfig {
	return ServerConfig{
		Strict:               false,
		CrystalPath:          "",
		ScanDebounceSeconds:  5,
		MaxProjectDepth:      10,
		MaxLibDepth:          3,
		MaxStdlibDepth:       2,
		OracleEnabled:        true,
		OracleBinary:         "crystal",
		OracleTimeoutSeconds: 0,
	}
}

// Load merges defaults, an optional config file (explicit path, then
// <workspaceRoot>/.liger.yml, then $HOME/.config/liger/config.yaml), and the
// CLI-supplied strict flag, in increasing priority.
func Load(workspaceRoot, explicitConfigPath string, strictFlag bool) (ServerConfig, error) {
	cfg := defaults()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("strict", cfg.Strict)
	v.SetDefault("crystalPath", cfg.CrystalPath)
	v.SetDefault("scanDebounceSeconds", cfg.ScanDebounceSeconds)
	v.SetDefault("maxProjectDepth", cfg.MaxProjectDepth)
	v.SetDefault("maxLibDepth", cfg.MaxLibDepth)
	v.SetDefault("maxStdlibDepth", cfg.MaxStdlibDepth)
	v.SetDefault("oracle.enabled", cfg.OracleEnabled)
	v.SetDefault("oracle.binary", cfg.OracleBinary)
	v.SetDefault("oracle.timeoutSeconds", cfg.OracleTimeoutSeconds)

	loaded := false
	if explicitConfigPath != "" {
		v.SetConfigFile(explicitConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", explicitConfigPath, err)
		}
		loaded = true
	}
	if !loaded && workspaceRoot != "" {
		for _, name := range []string{".liger.yml", ".liger.yaml", "liger.yml", "liger.yaml"} {
			p := filepath.Join(workspaceRoot, name)
			if _, err := os.Stat(p); err == nil {
				v.SetConfigFile(p)
				if err := v.ReadInConfig(); err == nil {
					loaded = true
				}
				break
			}
		}
	}
	if !loaded {
		if home, err := os.UserHomeDir(); err == nil {
			p := filepath.Join(home, ".config", "liger", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				v.SetConfigFile(p)
				_ = v.ReadInConfig()
			}
		}
	}

	cfg.Strict = v.GetBool("strict")
	cfg.CrystalPath = v.GetString("crystalPath")
	cfg.ScanDebounceSeconds = v.GetInt("scanDebounceSeconds")
	cfg.MaxProjectDepth = v.GetInt("maxProjectDepth")
	cfg.MaxLibDepth = v.GetInt("maxLibDepth")
	cfg.MaxStdlibDepth = v.GetInt("maxStdlibDepth")
	cfg.OracleEnabled = v.GetBool("oracle.enabled")
	cfg.OracleBinary = v.GetString("oracle.binary")
	cfg.OracleTimeoutSeconds = v.GetInt("oracle.timeoutSeconds")

	if strictFlag {
		cfg.Strict = true
	}
	if cfg.ScanDebounceSeconds <= 0 {
		cfg.ScanDebounceSeconds = 5
	}
	if cfg.OracleBinary == "" {
		cfg.OracleBinary = "crystal"
	}
	return cfg, nil
}
