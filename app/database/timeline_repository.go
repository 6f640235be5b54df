package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ TimelineRepository = (*TimelineRepositoryImpl)(nil)

type TimelineRepositoryImpl struct {
	db *DB
}

func NewTimelineRepository(db *DB) *TimelineRepositoryImpl {
	return &TimelineRepositoryImpl{db: db}
}

func (r *TimelineRepositoryImpl) GetTimeline(timelineName string) (*Timeline, error) {
	var t Timeline
	err := r.db.QueryRow(`
		SELECT id, name, title, source_ref, last_refreshed_at, next_refresh_at, created_at, updated_at
		FROM timelines
		WHERE name = ?
	`, timelineName).Scan(
		&t.ID, &t.Name, &t.Title, &t.SourceRef,
		&t.LastRefreshedAt, &t.NextRefreshAt, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}

	return &t, nil
}

func (r *TimelineRepositoryImpl) GetTimelineCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM timelines").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get timeline count: %w", err)
	}
	return count, nil
}

func (r *TimelineRepositoryImpl) UpsertTimeline(timelineName, sourceRef string) (bool, error) {
	existing, err := r.GetTimeline(timelineName)
	if err != nil {
		return false, fmt.Errorf("failed to check existing timeline: %w", err)
	}

	if existing == nil {
		_, err = r.db.Exec(`
			INSERT INTO timelines (name, source_ref)
			VALUES (?, ?)
		`, timelineName, sourceRef)
		if err != nil {
			return false, fmt.Errorf("failed to insert timeline: %w", err)
		}
		return false, nil
	}

	sourceChanged := existing.SourceRef != sourceRef

	_, err = r.db.Exec(`
		UPDATE timelines
		SET source_ref = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, sourceRef, timelineName)
	if err != nil {
		return false, fmt.Errorf("failed to update timeline: %w", err)
	}

	return sourceChanged, nil
}

func (r *TimelineRepositoryImpl) UpdateRefreshMetadata(timelineName string, title string, nextRefresh time.Time) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		UPDATE timelines
		SET title = ?, last_refreshed_at = ?, next_refresh_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, title, now, nextRefresh, timelineName)
	if err != nil {
		return fmt.Errorf("failed to update refresh metadata: %w", err)
	}

	return nil
}
