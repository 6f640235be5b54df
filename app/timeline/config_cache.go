package timeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	timelinesDir string
	cache        map[string]*Config
	mu           sync.RWMutex
}

func NewConfigCache(timelinesDir string) *ConfigCache {
	return &ConfigCache{
		timelinesDir: timelinesDir,
		cache:        make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.timelinesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.timelinesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		timelineName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(timelineName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "timeline", timelineName,
			"enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(timelineName string) (*Config, error) {
	configFile := cc.getConfigFilePath(timelineName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Set timeline name from parameter
	config.Name = timelineName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(timelineName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[timelineName]
	if !ok {
		return nil, fmt.Errorf("timeline config with name '%s' not found", timelineName)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 3600
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}
	if config.Settings.TagColumn == "" {
		config.Settings.TagColumn = DefaultTagColumn
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Name == "" {
		return fmt.Errorf("timeline name is required")
	}

	sourceCount := 0
	if len(config.Source.Sheets) > 0 {
		sourceCount++
	}
	if config.Source.ListSheet != "" {
		sourceCount++
	}
	if config.Source.FeedURL != "" {
		sourceCount++
	}
	if sourceCount == 0 {
		return fmt.Errorf("a source (sheets, list_sheet or feed_url) is required")
	}
	if sourceCount > 1 {
		return fmt.Errorf("only one of sheets, list_sheet or feed_url may be set")
	}

	if config.Settings.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must be non-negative")
	}
	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(timelineName string) string {
	return filepath.Join(cc.timelinesDir, timelineName+".yml")
}
