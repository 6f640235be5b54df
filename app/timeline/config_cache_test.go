package timeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create test YAML file
	content := `
title: "World War II"

source:
  sheets:
    - "abc123"
    - "def456"

settings:
  enabled: true
  refresh_interval: 1800
  timeout: 15
  tag_column: "Themes"
  extract_text: false
`

	err := os.WriteFile(filepath.Join(tempDir, "test.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load config
	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	// Get the config by name
	config, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	// Validate loaded values
	if config.Name != "test" {
		t.Errorf("Expected name 'test', got '%s'", config.Name)
	}
	if config.Title != "World War II" {
		t.Errorf("Expected title 'World War II', got '%s'", config.Title)
	}
	if len(config.Source.Sheets) != 2 {
		t.Errorf("Expected 2 sheets, got %d", len(config.Source.Sheets))
	}
	if time.Duration(config.Settings.RefreshInterval)*time.Second != 1800*time.Second {
		t.Errorf("Expected refresh interval 1800s, got %v", time.Duration(config.Settings.RefreshInterval)*time.Second)
	}
	if config.Settings.TagColumn != "Themes" {
		t.Errorf("Expected tag column 'Themes', got '%s'", config.Settings.TagColumn)
	}
	if config.SourceRef() != "sheets:abc123,def456" {
		t.Errorf("Unexpected source ref '%s'", config.SourceRef())
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create minimal test YAML file
	content := `
source:
  feed_url: "https://example.com/feed.xml"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "test.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load config
	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	// Get the config by name
	config, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	// Validate default values
	if time.Duration(config.Settings.RefreshInterval)*time.Second != 3600*time.Second {
		t.Errorf("Expected default refresh interval 3600s, got %v", time.Duration(config.Settings.RefreshInterval)*time.Second)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
	if config.Settings.TagColumn != DefaultTagColumn {
		t.Errorf("Expected default tag column '%s', got '%s'", DefaultTagColumn, config.Settings.TagColumn)
	}
	if config.SourceRef() != "feed:https://example.com/feed.xml" {
		t.Errorf("Unexpected source ref '%s'", config.SourceRef())
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create invalid YAML file (missing source)
	content := `
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load config
	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestConfigCacheConflictingSources(t *testing.T) {
	tempDir := t.TempDir()

	content := `
source:
  feed_url: "https://example.com/feed.xml"
  list_sheet: "abc123"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "conflicted.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error when multiple sources are configured")
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Load from empty directory
	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create initial test YAML file
	initialContent := `
source:
  sheets:
    - "abc123"

settings:
  enabled: true
`

	configFile := filepath.Join(tempDir, "test.yml")
	err := os.WriteFile(configFile, []byte(initialContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Load initial config
	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	// Verify initial config can be loaded
	_, err = configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	// Update the file on disk with new content
	updatedContent := `
source:
  list_sheet: "master456"

settings:
  enabled: true
  extract_text: true
`

	err = os.WriteFile(configFile, []byte(updatedContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	// Reload config from disk
	reloadedConfig, err := configCache.LoadConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.SourceRef() != "list:master456" {
		t.Errorf("Expected updated source ref 'list:master456', got '%s'", reloadedConfig.SourceRef())
	}
	if !reloadedConfig.Settings.ExtractText {
		t.Error("Expected extract_text to be enabled after reload")
	}

	// Test loading non-existent config
	_, err = configCache.LoadConfig("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}

	// Test loading invalid config
	invalidContent := `invalid yaml content`
	err = os.WriteFile(configFile, []byte(invalidContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	_, err = configCache.LoadConfig("test")
	if err == nil {
		t.Error("Expected error for invalid config file")
	}
}

func TestConfigCacheGetConfigs(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	// Create multiple test YAML files
	configs := []struct {
		filename string
		content  string
	}{
		{
			"timeline1.yml",
			`
source:
  sheets:
    - "sheet1"
settings:
  enabled: true
`,
		},
		{
			"timeline2.yml",
			`
source:
  feed_url: "https://example.com/feed2.xml"
settings:
  enabled: false
`,
		},
	}

	for _, config := range configs {
		err := os.WriteFile(filepath.Join(tempDir, config.filename), []byte(config.content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	// Load configs
	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	// Get all configs
	allConfigs := configCache.GetConfigs()
	if len(allConfigs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(allConfigs))
	}

	// Only timeline1 is enabled
	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Errorf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["timeline1"]; !ok {
		t.Error("Expected timeline1 to be the enabled config")
	}

	// Verify it's a copy (modifying returned map shouldn't affect cache)
	delete(allConfigs, "timeline1")
	if configCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}
}

// Validation tests

func TestConfigCacheValidateConfigNil(t *testing.T) {
	configCache := NewConfigCache("")
	err := configCache.validateConfig(nil)
	if err == nil {
		t.Error("Expected error for nil config, got none")
	}
}

func TestConfigCacheValidateConfigRequiredFields(t *testing.T) {
	configCache := NewConfigCache("")

	// Test with empty timeline name
	config := &Config{
		Name:   "",
		Source: ConfigSource{Sheets: []string{"abc123"}},
	}
	err := configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for empty timeline name, got none")
	}

	// Test with no source
	config.Name = "test-timeline"
	config.Source = ConfigSource{}
	err = configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for missing source, got none")
	}
}

func TestConfigCacheValidateConfigNegativeValues(t *testing.T) {
	configCache := NewConfigCache("")

	config := &Config{
		Name:   "test-timeline",
		Source: ConfigSource{Sheets: []string{"abc123"}},
	}

	// Test with negative refresh interval
	config.Settings.RefreshInterval = -1
	err := configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for negative refresh interval, got none")
	}

	// Test with negative timeout
	config.Settings.RefreshInterval = 3600
	config.Settings.Timeout = -1
	err = configCache.validateConfig(config)
	if err == nil {
		t.Error("Expected error for negative timeout, got none")
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	tempDir := t.TempDir()

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	_, err = configCache.GetConfig("any-timeline")
	if err == nil {
		t.Error("Expected error for timeline name in empty cache, got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected error message to contain 'not found', got: %v", err)
	}
}
