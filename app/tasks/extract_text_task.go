package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/rss"
	"github.com/fabtime/fabtime/app/timeline"
)

// Text extraction is bounded per run so a timeline with many empty items
// cannot monopolize a worker.
const extractionBatchSize = 25

type ExtractTextTask struct {
	Task
	Config        *timeline.Config
	httpClient    *http.Client
	textExtractor *rss.TextExtractor
	itemRepo      database.ItemRepository
	userAgent     string
}

func NewExtractTextTask(timelineName string, config *timeline.Config, httpClient *http.Client, textExtractor *rss.TextExtractor, itemRepo database.ItemRepository, userAgent string) *ExtractTextTask {
	return &ExtractTextTask{
		Task:          NewTask(TaskTypeExtractText, timelineName),
		Config:        config,
		httpClient:    httpClient,
		textExtractor: textExtractor,
		itemRepo:      itemRepo,
		userAgent:     userAgent,
	}
}

func (t *ExtractTextTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.ExtractText {
		slog.Debug("Text extraction disabled for timeline", "timeline", t.TimelineName)
		return nil
	}

	items, err := t.itemRepo.GetItemsForExtraction(t.TimelineName, extractionBatchSize)
	if err != nil {
		return fmt.Errorf("failed to get items for text extraction: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No items need text extraction", "timeline", t.TimelineName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := t.extractTextForItem(ctx, item)
		if err != nil {
			slog.Error("Failed to extract text for item", "item_id", item.ID, "url", item.Link, "error", err)
			errorCount++

			now := time.Now().UTC()
			err = t.itemRepo.UpdateExtractedText(item.ID, "", "failed", &now, err.Error())
			if err != nil {
				slog.Error("Failed to update text extraction status", "item_id", item.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"timeline", t.TimelineName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractTextTask) extractTextForItem(ctx context.Context, item database.ItemForExtraction) error {
	if item.Link == "" {
		return fmt.Errorf("item has no link")
	}

	data, err := t.fetchArticle(ctx, item.Link)
	if err != nil {
		return fmt.Errorf("failed to fetch article: %w", err)
	}

	text, err := t.textExtractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	now := time.Now().UTC()
	err = t.itemRepo.UpdateExtractedText(item.ID, text, "success", &now, "")
	if err != nil {
		return fmt.Errorf("failed to update extracted text: %w", err)
	}

	slog.Debug("Text extracted successfully", "item_id", item.ID, "url", item.Link, "text_length", len(text))
	return nil
}

func (t *ExtractTextTask) fetchArticle(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.Config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
