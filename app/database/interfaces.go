package database

import (
	"time"
)

type TimelineRepository interface {
	GetTimeline(timelineName string) (*Timeline, error)
	GetTimelineCount() (int, error)

	// UpsertTimeline registers a timeline and reports whether its source
	// reference changed since the previous registration.
	UpsertTimeline(timelineName, sourceRef string) (bool, error)
	UpdateRefreshMetadata(timelineName string, title string, nextRefresh time.Time) error
}

type ItemForExtraction struct {
	ID   int64
	Link string
}

type ItemRepository interface {
	GetVisibleItems(timelineName string) ([]Item, error)
	GetTitleItem(timelineName string) (*Item, error)
	GetItemCount(timelineName string) (int, error)

	// ReplaceItems swaps the timeline's item set atomically. A refresh always
	// rebuilds the whole set because row identity is positional.
	ReplaceItems(timelineName string, items []Item) error

	GetItemsForExtraction(timelineName string, limit int) ([]ItemForExtraction, error)
	UpdateExtractedText(itemID int64, text string, status string, extractedAt *time.Time, errorMsg string) error
}
