package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/timeline"
)

type SyncTimelineConfigTask struct {
	Task
	Config       *timeline.Config
	timelineRepo database.TimelineRepository
}

func NewSyncTimelineConfigTask(timelineName string, config *timeline.Config, timelineRepo database.TimelineRepository) *SyncTimelineConfigTask {
	return &SyncTimelineConfigTask{
		Task:         NewTask(TaskTypeSyncTimelineConfig, timelineName),
		Config:       config,
		timelineRepo: timelineRepo,
	}
}

func (t *SyncTimelineConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sourceChanged, err := t.timelineRepo.UpsertTimeline(t.Config.Name, t.Config.SourceRef())
	if err != nil {
		slog.Error("Task failed", "type", "SyncTimelineConfig", "timeline", t.TimelineName, "error", err)
		return fmt.Errorf("failed to sync timeline config to database: %w", err)
	}

	if sourceChanged {
		slog.Info("Timeline source changed", "timeline", t.TimelineName, "source", t.Config.SourceRef())
	}

	slog.Info("Task completed",
		"type", "SyncTimelineConfig",
		"timeline", t.TimelineName,
		"duration", t.GetDuration())

	return nil
}
