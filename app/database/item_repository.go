package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

var _ ItemRepository = (*ItemRepositoryImpl)(nil)

type ItemRepositoryImpl struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepositoryImpl {
	return &ItemRepositoryImpl{db: db}
}

const itemColumns = `id, timeline_id, position, is_title,
	start_at, start_precision, start_ms, end_at, end_precision, duration_ms,
	headline, text, link, display_date,
	media_url, media_credit, media_caption, media_thumbnail,
	type, group_name, group_slug, tags, tag_slugs, background, content_hash,
	text_extracted_at, text_extraction_status, text_extraction_error, created_at`

// GetVisibleItems lists a timeline's items in display order: start instant
// ascending, then longer ranges before shorter ones, then source row order.
// start_ms carries the ordering because the ISO strings reverse among BCE
// years when compared lexicographically.
func (r *ItemRepositoryImpl) GetVisibleItems(timelineName string) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT `+itemColumns+`
		FROM timeline_items
		WHERE timeline_id = (SELECT id FROM timelines WHERE name = ?)
		  AND is_title = 0
		ORDER BY start_ms, duration_ms DESC, position
	`, timelineName)
	if err != nil {
		return nil, fmt.Errorf("failed to get visible items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *ItemRepositoryImpl) GetTitleItem(timelineName string) (*Item, error) {
	row := r.db.QueryRow(`
		SELECT `+itemColumns+`
		FROM timeline_items
		WHERE timeline_id = (SELECT id FROM timelines WHERE name = ?)
		  AND is_title = 1
		LIMIT 1
	`, timelineName)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get title item: %w", err)
	}

	return item, nil
}

func (r *ItemRepositoryImpl) GetItemCount(timelineName string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM timeline_items
		WHERE timeline_id = (SELECT id FROM timelines WHERE name = ?)
		  AND is_title = 0
	`, timelineName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

func (r *ItemRepositoryImpl) ReplaceItems(timelineName string, items []Item) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var timelineID int64
	err = tx.QueryRow("SELECT id FROM timelines WHERE name = ?", timelineName).Scan(&timelineID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("timeline %q is not registered", timelineName)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve timeline: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM timeline_items WHERE timeline_id = ?", timelineID); err != nil {
		return fmt.Errorf("failed to clear timeline items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO timeline_items (
			timeline_id, position, is_title,
			start_at, start_precision, start_ms, end_at, end_precision, duration_ms,
			headline, text, link, display_date,
			media_url, media_credit, media_caption, media_thumbnail,
			type, group_name, group_slug, tags, tag_slugs, background, content_hash,
			text_extraction_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		tags, err := marshalSlugs(item.Tags)
		if err != nil {
			return err
		}
		tagSlugs, err := marshalSlugs(item.TagSlugs)
		if err != nil {
			return err
		}

		_, err = stmt.Exec(
			timelineID, item.Position, item.IsTitle,
			item.StartAt, item.StartPrecision, item.StartMs, item.EndAt, item.EndPrecision, item.DurationMs,
			item.Headline, item.Text, item.Link, item.DisplayDate,
			item.MediaURL, item.MediaCredit, item.MediaCaption, item.MediaThumbnail,
			item.Type, item.GroupName, item.GroupSlug, tags, tagSlugs, item.Background, item.ContentHash,
			item.TextExtractionStatus,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item replacement: %w", err)
	}

	return nil
}

func (r *ItemRepositoryImpl) GetItemsForExtraction(timelineName string, limit int) ([]ItemForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, link
		FROM timeline_items
		WHERE timeline_id = (SELECT id FROM timelines WHERE name = ?)
		  AND text_extraction_status = 'pending'
		  AND link != ''
		ORDER BY position
		LIMIT ?
	`, timelineName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for extraction: %w", err)
	}
	defer rows.Close()

	var items []ItemForExtraction
	for rows.Next() {
		var item ItemForExtraction
		if err := rows.Scan(&item.ID, &item.Link); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepositoryImpl) UpdateExtractedText(itemID int64, text string, status string, extractedAt *time.Time, errorMsg string) error {
	if text != "" {
		_, err := r.db.Exec(`
			UPDATE timeline_items
			SET text = ?, text_extraction_status = ?, text_extracted_at = ?, text_extraction_error = ?
			WHERE id = ?
		`, text, status, extractedAt, errorMsg, itemID)
		if err != nil {
			return fmt.Errorf("failed to update extracted text: %w", err)
		}
		return nil
	}

	_, err := r.db.Exec(`
		UPDATE timeline_items
		SET text_extraction_status = ?, text_extracted_at = ?, text_extraction_error = ?
		WHERE id = ?
	`, status, extractedAt, errorMsg, itemID)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var tags, tagSlugs string

	err := row.Scan(
		&item.ID, &item.TimelineID, &item.Position, &item.IsTitle,
		&item.StartAt, &item.StartPrecision, &item.StartMs, &item.EndAt, &item.EndPrecision, &item.DurationMs,
		&item.Headline, &item.Text, &item.Link, &item.DisplayDate,
		&item.MediaURL, &item.MediaCredit, &item.MediaCaption, &item.MediaThumbnail,
		&item.Type, &item.GroupName, &item.GroupSlug, &tags, &tagSlugs, &item.Background, &item.ContentHash,
		&item.TextExtractedAt, &item.TextExtractionStatus, &item.TextExtractionError, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if item.Tags, err = unmarshalSlugs(tags); err != nil {
		return nil, err
	}
	if item.TagSlugs, err = unmarshalSlugs(tagSlugs); err != nil {
		return nil, err
	}

	return &item, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func marshalSlugs(values []string) (string, error) {
	if values == nil {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode tag list: %w", err)
	}
	return string(data), nil
}

func unmarshalSlugs(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode tag list: %w", err)
	}
	return values, nil
}
