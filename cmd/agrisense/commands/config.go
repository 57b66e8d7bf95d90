package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agrisense/agrisense/internal/cache"
	"github.com/agrisense/agrisense/internal/syncer"
)

// Config is the YAML CLI configuration. Duration fields are strings in
// Go duration syntax ("30m", "5m") because yaml.v3 has no native
// duration decoding.
type Config struct {
	// GenerationEndpoint is the text-generation backend URL. Empty
	// means no backend: recommendations come from the built-in
	// heuristic only.
	GenerationEndpoint string `yaml:"generation_endpoint"`

	// RemoteEndpoint is the remote saved-crops document URL. Empty
	// disables sync.
	RemoteEndpoint string `yaml:"remote_endpoint"`

	// ProbeURL is the connectivity check target. Defaults to the
	// remote endpoint.
	ProbeURL string `yaml:"probe_url"`

	// CacheTTL is the recommendation cache time-to-live.
	CacheTTL string `yaml:"cache_ttl"`

	// StalenessThreshold gates opportunistic syncs.
	StalenessThreshold string `yaml:"staleness_threshold"`

	// GenerationRPS and GenerationBurst rate-limit the generation
	// backend.
	GenerationRPS   float64 `yaml:"generation_rps"`
	GenerationBurst int     `yaml:"generation_burst"`
}

// defaultConfigPath returns ~/.agrisense/config.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".agrisense", "config.yaml"), nil
}

// loadConfig reads the config file. A missing file yields defaults.
func loadConfig() (Config, error) {
	cfg := Config{
		GenerationRPS:   1,
		GenerationBurst: 2,
	}

	path := configPath
	if path == "" {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return cfg, err
		}
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// cacheTTL parses the configured TTL, falling back to the default.
func (c Config) cacheTTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return cache.DefaultTTL, nil
	}
	return time.ParseDuration(c.CacheTTL)
}

// stalenessThreshold parses the configured threshold, falling back to
// the default.
func (c Config) stalenessThreshold() (time.Duration, error) {
	if c.StalenessThreshold == "" {
		return syncer.DefaultStalenessThreshold, nil
	}
	return time.ParseDuration(c.StalenessThreshold)
}

// probeURL returns the connectivity check target.
func (c Config) probeURL() string {
	if c.ProbeURL != "" {
		return c.ProbeURL
	}
	return c.RemoteEndpoint
}
