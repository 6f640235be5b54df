package api

import (
	"net/http"

	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/rss"
	"github.com/fabtime/fabtime/app/sheets"
	"github.com/fabtime/fabtime/app/tasks"
	"github.com/fabtime/fabtime/app/timeline"
)

type Handler struct {
	timelineRepo database.TimelineRepository
	itemRepo     database.ItemRepository
	configCache  *timeline.ConfigCache
	filterStore  *timeline.FilterStore
	scheduler    tasks.TaskSchedulerInterface
	httpClient   *http.Client
	sheetsClient *sheets.Client
	rssSource    *rss.Source
	userAgent    string
}
