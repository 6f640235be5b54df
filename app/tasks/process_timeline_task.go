package tasks

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/rss"
	"github.com/fabtime/fabtime/app/sheets"
	"github.com/fabtime/fabtime/app/timeline"
)

type ProcessTimelineTask struct {
	Task
	Config       *timeline.Config
	httpClient   *http.Client
	sheetsClient *sheets.Client
	rssSource    *rss.Source
	timelineRepo database.TimelineRepository
	itemRepo     database.ItemRepository
	userAgent    string
}

func NewProcessTimelineTask(timelineName string, config *timeline.Config, httpClient *http.Client, sheetsClient *sheets.Client, rssSource *rss.Source, timelineRepo database.TimelineRepository, itemRepo database.ItemRepository, userAgent string) *ProcessTimelineTask {
	return &ProcessTimelineTask{
		Task:         NewTask(TaskTypeProcessTimeline, timelineName),
		Config:       config,
		httpClient:   httpClient,
		sheetsClient: sheetsClient,
		rssSource:    rssSource,
		timelineRepo: timelineRepo,
		itemRepo:     itemRepo,
		userAgent:    userAgent,
	}
}

func (t *ProcessTimelineTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled {
		slog.Debug("Timeline disabled, skipping", "timeline", t.TimelineName)
		return nil
	}

	rows, sourceTitle, err := t.fetchRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch timeline rows: %w", err)
	}

	result := timeline.BuildItems(rows, timeline.Options{TagColumn: t.Config.Settings.TagColumn})

	for _, diag := range result.Diagnostics {
		slog.Warn("Row date rejected",
			"timeline", t.TimelineName,
			"headline", diag.Headline,
			"field", diag.Field,
			"error", diag.Err)
	}

	err = t.storeItems(result)
	if err != nil {
		return fmt.Errorf("failed to store items: %w", err)
	}

	err = t.storeTimelineMetadata(result, sourceTitle)
	if err != nil {
		return fmt.Errorf("failed to store timeline metadata: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessTimeline",
		"timeline", t.TimelineName,
		"duration", t.GetDuration(),
		"rows", len(rows),
		"items", len(result.Items),
		"rejected", len(result.Diagnostics),
		"groups", len(result.Facets.Groups),
		"tags", len(result.Facets.Tags))

	return nil
}

// fetchRows materializes the full row set from the configured source. Sheets
// are concatenated in listing order so positions stay stable across refreshes.
func (t *ProcessTimelineTask) fetchRows(ctx context.Context) ([]timeline.Row, string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.Config.Settings.Timeout)*time.Second)
	defer cancel()

	if t.Config.Source.FeedURL != "" {
		data, err := t.fetchFeed(timeoutCtx, t.Config.Source.FeedURL)
		if err != nil {
			return nil, "", err
		}
		title, rows, err := t.rssSource.Run(data)
		if err != nil {
			return nil, "", err
		}
		return rows, title, nil
	}

	sheetIDs := t.Config.Source.Sheets
	if t.Config.Source.ListSheet != "" {
		listed, err := t.sheetsClient.FetchSheetList(timeoutCtx, sheets.ExtractSheetID(t.Config.Source.ListSheet))
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch sheet list: %w", err)
		}
		sheetIDs = listed
	}

	var rows []timeline.Row
	for _, raw := range sheetIDs {
		id := sheets.ExtractSheetID(raw)
		if id == "" {
			slog.Warn("Skipping unrecognized sheet reference", "timeline", t.TimelineName, "value", raw)
			continue
		}
		sheetRows, err := t.sheetsClient.FetchRows(timeoutCtx, id)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch sheet %s: %w", id, err)
		}
		rows = append(rows, sheetRows...)
	}

	return rows, "", nil
}

func (t *ProcessTimelineTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (t *ProcessTimelineTask) storeItems(result timeline.Result) error {
	records := make([]database.Item, 0, len(result.Items)+1)
	if result.Title != nil {
		records = append(records, database.FromPipelineItem(*result.Title, 0, true))
	}
	for i, item := range result.Items {
		records = append(records, database.FromPipelineItem(item, i+1, false))
	}

	return t.itemRepo.ReplaceItems(t.TimelineName, records)
}

func (t *ProcessTimelineTask) storeTimelineMetadata(result timeline.Result, sourceTitle string) error {
	var divertedTitle string
	if result.Title != nil {
		divertedTitle = result.Title.Headline
	}

	// Configured title wins, then the diverted title row, then whatever the
	// source itself reports.
	title := cmp.Or(t.Config.Title, divertedTitle, sourceTitle)

	nextRefresh := time.Now().UTC().Add(time.Duration(t.Config.Settings.RefreshInterval) * time.Second)

	err := t.timelineRepo.UpdateRefreshMetadata(t.TimelineName, title, nextRefresh)
	if err != nil {
		return fmt.Errorf("failed to update timeline metadata and next refresh time: %w", err)
	}

	return nil
}
