package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/rss"
	"github.com/fabtime/fabtime/app/sheets"
	"github.com/fabtime/fabtime/app/tasks"
	"github.com/fabtime/fabtime/app/timeline"
)

func NewHandler(configCache *timeline.ConfigCache, timelineRepo database.TimelineRepository,
	itemRepo database.ItemRepository, filterStore *timeline.FilterStore,
	scheduler tasks.TaskSchedulerInterface, httpClient *http.Client,
	sheetsClient *sheets.Client, rssSource *rss.Source, userAgent string) *Handler {
	return &Handler{
		timelineRepo: timelineRepo,
		itemRepo:     itemRepo,
		configCache:  configCache,
		filterStore:  filterStore,
		scheduler:    scheduler,
		httpClient:   httpClient,
		sheetsClient: sheetsClient,
		rssSource:    rssSource,
		userAgent:    userAgent,
	}
}

// GetTimelineItems returns the timeline's visible items with the caller's
// current filter selection applied.
func (h *Handler) GetTimelineItems(c *gin.Context) {
	name := c.Param("name")

	items, ok := h.loadItems(c, name)
	if !ok {
		return
	}

	state := h.filterStore.Get(name)
	filtered := timeline.FilterItems(items, state)

	c.JSON(http.StatusOK, gin.H{
		"timeline": name,
		"items":    filtered,
		"total":    len(items),
		"visible":  len(filtered),
	})
}

func (h *Handler) GetTimelineFacets(c *gin.Context) {
	name := c.Param("name")

	items, ok := h.loadItems(c, name)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, timeline.CollectFacets(items))
}

func (h *Handler) GetTimelineTitle(c *gin.Context) {
	name := c.Param("name")

	registered, ok := h.loadTimeline(c, name)
	if !ok {
		return
	}

	response := gin.H{
		"timeline": name,
		"title":    registered.Title,
	}

	record, err := h.itemRepo.GetTitleItem(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_title_item", "timeline", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if record != nil {
		entry, err := database.ToPipelineItem(*record)
		if err != nil {
			slog.Error("Stored title entry is corrupt", "timeline", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored title entry is corrupt"})
			return
		}
		response["entry"] = entry
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetFilters(c *gin.Context) {
	name := c.Param("name")

	if _, ok := h.loadTimeline(c, name); !ok {
		return
	}

	c.JSON(http.StatusOK, h.filterStore.Get(name))
}

func (h *Handler) PutFilters(c *gin.Context) {
	name := c.Param("name")

	if _, ok := h.loadTimeline(c, name); !ok {
		return
	}

	var state timeline.FilterState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter payload", "details": err.Error()})
		return
	}

	if state.TagMode != "" && !timeline.ValidTagMode(string(state.TagMode)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag mode", "details": "tag_mode must be \"any\" or \"all\""})
		return
	}

	h.filterStore.Set(name, state)

	c.JSON(http.StatusOK, h.filterStore.Get(name))
}

func (h *Handler) DeleteFilters(c *gin.Context) {
	name := c.Param("name")

	if _, ok := h.loadTimeline(c, name); !ok {
		return
	}

	h.filterStore.Reset(name)

	c.JSON(http.StatusOK, h.filterStore.Get(name))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if timelineCount, err := h.timelineRepo.GetTimelineCount(); err == nil {
		health["timelines"] = timelineCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	timelines := make([]map[string]interface{}, 0, len(configs))
	totalItems := 0

	for _, config := range configs {
		info := map[string]interface{}{
			"name":    config.Name,
			"enabled": config.Settings.Enabled,
		}
		if count, err := h.itemRepo.GetItemCount(config.Name); err == nil {
			info["items"] = count
			totalItems += count
		}
		timelines = append(timelines, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"timelines":   timelines,
		"total_items": totalItems,
	})
}

func (h *Handler) APIListTimelines(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	timelines := make([]map[string]interface{}, 0, len(configs))

	for _, config := range configs {
		info := map[string]interface{}{
			"name":             config.Name,
			"source":           config.SourceRef(),
			"title":            config.Title,
			"enabled":          config.Settings.Enabled,
			"refresh_interval": (time.Duration(config.Settings.RefreshInterval) * time.Second).String(),
			"extract_text":     config.Settings.ExtractText,
		}

		if registered, err := h.timelineRepo.GetTimeline(config.Name); err == nil && registered != nil {
			if registered.Title != "" {
				info["title"] = registered.Title
			}
			info["last_refreshed_at"] = registered.LastRefreshedAt
			info["next_refresh_at"] = registered.NextRefreshAt
			info["updated_at"] = registered.UpdatedAt
		}

		if itemCount, err := h.itemRepo.GetItemCount(config.Name); err == nil {
			info["item_count"] = itemCount
		}

		timelines = append(timelines, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"timelines": timelines,
		"total":     len(timelines),
	})
}

// APIRefreshTimeline reloads the timeline's configuration from disk and
// enqueues a sync plus a full reprocess.
func (h *Handler) APIRefreshTimeline(c *gin.Context) {
	name := c.Param("name")

	if _, ok := h.loadTimeline(c, name); !ok {
		return
	}

	config, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "timeline", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncTimelineConfigTask(name, config, h.timelineRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "timeline", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	processTask := tasks.NewProcessTimelineTask(name, config, h.httpClient, h.sheetsClient, h.rssSource, h.timelineRepo, h.itemRepo, h.userAgent)
	if err := h.scheduler.EnqueueTask(processTask); err != nil {
		slog.Error("Error enqueueing process task", "timeline", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue process task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"timeline": gin.H{
			"name":   name,
			"source": config.SourceRef(),
		},
		"tasks": []gin.H{
			{
				"id":   syncTask.ID,
				"type": syncTask.Type,
			},
			{
				"id":   processTask.ID,
				"type": processTask.Type,
			},
		},
	})
}

func (h *Handler) loadTimeline(c *gin.Context, name string) (*database.Timeline, bool) {
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing timeline name parameter"})
		return nil, false
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Timeline configuration not found", "timeline", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Timeline configuration not found"})
		return nil, false
	}

	registered, err := h.timelineRepo.GetTimeline(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_timeline", "timeline", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if registered == nil {
		slog.Error("Timeline not found in database", "timeline", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Timeline not found in database"})
		return nil, false
	}

	return registered, true
}

func (h *Handler) loadItems(c *gin.Context, name string) ([]timeline.Item, bool) {
	if _, ok := h.loadTimeline(c, name); !ok {
		return nil, false
	}

	records, err := h.itemRepo.GetVisibleItems(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "timeline", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	items := make([]timeline.Item, 0, len(records))
	for _, record := range records {
		item, err := database.ToPipelineItem(record)
		if err != nil {
			slog.Error("Stored item is corrupt", "timeline", name, "item_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored item is corrupt"})
			return nil, false
		}
		items = append(items, item)
	}

	return items, true
}
