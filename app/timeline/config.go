package timeline

// Timeline configuration types, loaded from per-timeline YAML files.

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Title    string         `yaml:"title"`
	Source   ConfigSource   `yaml:"source"`
	Settings ConfigSettings `yaml:"settings"`
}

// ConfigSource names where a timeline's rows come from. Exactly one of the
// sheet-based bindings or the feed URL must be set. ListSheet points at a
// master sheet whose first column holds the member sheet IDs or URLs.
type ConfigSource struct {
	Sheets    []string `yaml:"sheets"`
	ListSheet string   `yaml:"list_sheet"`
	FeedURL   string   `yaml:"feed_url"`
}

type ConfigSettings struct {
	Enabled         bool   `yaml:"enabled"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds
	Timeout         int    `yaml:"timeout"`          // seconds
	TagColumn       string `yaml:"tag_column"`
	ExtractText     bool   `yaml:"extract_text"` // fill empty item text from the media link
}

// SourceRef returns a single string identifying the configured source, used
// for change detection against the stored registration.
func (c *Config) SourceRef() string {
	if c.Source.FeedURL != "" {
		return "feed:" + c.Source.FeedURL
	}
	if c.Source.ListSheet != "" {
		return "list:" + c.Source.ListSheet
	}
	ref := "sheets:"
	for i, id := range c.Source.Sheets {
		if i > 0 {
			ref += ","
		}
		ref += id
	}
	return ref
}
