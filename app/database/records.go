package database

import (
	"crypto/sha256"
	"fmt"

	"github.com/fabtime/fabtime/app/timeline"
)

// FromPipelineItem flattens a normalized item into an insertable record.
// Extraction starts pending only for items that have a link but no body text.
func FromPipelineItem(item timeline.Item, position int, isTitle bool) Item {
	rec := Item{
		Position:       position,
		IsTitle:        isTitle,
		DurationMs:     item.Duration,
		Headline:       item.Headline,
		Text:           item.Text,
		Link:           item.Link,
		DisplayDate:    item.DisplayDate,
		MediaURL:       item.Media.URL,
		MediaCredit:    item.Media.Credit,
		MediaCaption:   item.Media.Caption,
		MediaThumbnail: item.Media.Thumbnail,
		Type:           item.Type,
		GroupName:      item.Group,
		GroupSlug:      item.GroupSlug,
		Tags:           item.Tags,
		TagSlugs:       item.TagSlugs,
		Background:     item.Background,
		ContentHash:    fmt.Sprintf("%x", sha256.Sum256([]byte(item.Headline+"|"+item.DisplayDate))),

		TextExtractionStatus: "skipped",
	}

	if item.Start != nil {
		rec.StartAt = item.Start.ISO()
		rec.StartPrecision = item.Start.Precision()
		rec.StartMs = item.Start.UnixMilli()
	}
	if item.End != nil {
		rec.EndAt = item.End.ISO()
		rec.EndPrecision = item.End.Precision()
	}

	if item.Link != "" && item.Text == "" {
		rec.TextExtractionStatus = "pending"
	}

	return rec
}

// ToPipelineItem rebuilds the normalized item from a stored record.
func ToPipelineItem(rec Item) (timeline.Item, error) {
	item := timeline.Item{
		Duration:    rec.DurationMs,
		Headline:    rec.Headline,
		Text:        rec.Text,
		Link:        rec.Link,
		DisplayDate: rec.DisplayDate,
		Media: timeline.Media{
			URL:       rec.MediaURL,
			Credit:    rec.MediaCredit,
			Caption:   rec.MediaCaption,
			Thumbnail: rec.MediaThumbnail,
		},
		Type:       rec.Type,
		Group:      rec.GroupName,
		GroupSlug:  rec.GroupSlug,
		Tags:       rec.Tags,
		TagSlugs:   rec.TagSlugs,
		Background: rec.Background,
	}

	if rec.StartAt != "" {
		start, err := timeline.ParseISO(rec.StartAt)
		if err != nil {
			return timeline.Item{}, fmt.Errorf("failed to parse stored start: %w", err)
		}
		start.ApplyPrecision(rec.StartPrecision)
		item.Start = start
	}
	if rec.EndAt != "" {
		end, err := timeline.ParseISO(rec.EndAt)
		if err != nil {
			return timeline.Item{}, fmt.Errorf("failed to parse stored end: %w", err)
		}
		end.ApplyPrecision(rec.EndPrecision)
		item.End = end
	}

	return item, nil
}
