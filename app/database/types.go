package database

import (
	"time"
)

type Timeline struct {
	ID              int64
	Name            string // Configuration timeline identifier derived from filename
	Title           string // Display title, either configured or taken from the title row
	SourceRef       string // Data source reference from configuration (sheet IDs, list sheet or feed URL)
	LastRefreshedAt *time.Time
	NextRefreshAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time // Tracks last successful processing
}

type Item struct {
	ID             int64
	TimelineID     int64
	Position       int // Source row order within the timeline
	IsTitle        bool
	StartAt        string // ISO 8601, sign-preserving year; empty for title entries
	StartPrecision string
	StartMs        int64 // Epoch milliseconds of the start instant, drives listing order
	EndAt          string
	EndPrecision   string
	DurationMs     int64
	Headline       string
	Text           string
	Link           string
	DisplayDate    string
	MediaURL       string
	MediaCredit    string
	MediaCaption   string
	MediaThumbnail string
	Type           string
	GroupName      string
	GroupSlug      string
	Tags           []string
	TagSlugs       []string
	Background     string
	ContentHash    string // sha256 of "headline|display date"

	TextExtractedAt      *time.Time
	TextExtractionStatus string // pending, success, failed, skipped
	TextExtractionError  string

	CreatedAt time.Time
}
