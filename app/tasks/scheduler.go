package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fabtime/fabtime/app/cfg"
	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/rss"
	"github.com/fabtime/fabtime/app/sheets"
	"github.com/fabtime/fabtime/app/timeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	timelineRepo  database.TimelineRepository
	itemRepo      database.ItemRepository
	configCache   *timeline.ConfigCache
	httpClient    *http.Client
	sheetsClient  *sheets.Client
	rssSource     *rss.Source
	textExtractor *rss.TextExtractor
	userAgent     string
	interval      time.Duration
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(configCache *timeline.ConfigCache, timelineRepo database.TimelineRepository,
	itemRepo database.ItemRepository, httpClient *http.Client, sheetsClient *sheets.Client,
	rssSource *rss.Source, textExtractor *rss.TextExtractor) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		timelineRepo:  timelineRepo,
		itemRepo:      itemRepo,
		configCache:   configCache,
		httpClient:    httpClient,
		sheetsClient:  sheetsClient,
		rssSource:     rssSource,
		textExtractor: textExtractor,
		userAgent:     cfg.UserAgent,
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:   cfg.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No timeline configurations found")
		return
	}

	slog.Debug("Processing timeline configurations", "count", len(configs))

	for _, config := range configs {
		syncTask := NewSyncTimelineConfigTask(config.Name, config, s.timelineRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncTimelineConfigTask", "timeline", config.Name, "error", err)
			continue
		}

		if !config.Settings.Enabled {
			slog.Debug("Timeline disabled, skipping ProcessTimelineTask", "timeline", config.Name)
			continue
		}

		processTask := NewProcessTimelineTask(config.Name, config, s.httpClient, s.sheetsClient, s.rssSource, s.timelineRepo, s.itemRepo, s.userAgent)
		if err := s.EnqueueTask(processTask); err != nil {
			slog.Warn("Failed to enqueue ProcessTimelineTask", "timeline", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled timeline configurations found")
		return
	}

	slog.Debug("Processing enabled timeline configurations for task scheduling", "count", len(configs))

	for _, config := range configs {
		registered, err := s.timelineRepo.GetTimeline(config.Name)
		if err != nil {
			slog.Warn("Failed to get timeline from database, skipping", "timeline", config.Name, "error", err)
			continue
		}
		if registered == nil {
			slog.Warn("Timeline not found in database, skipping", "timeline", config.Name)
			continue
		}

		now := time.Now().UTC()
		if registered.NextRefreshAt != nil && registered.NextRefreshAt.After(now) {
			slog.Debug("Timeline not due for refresh yet", "timeline", config.Name, "next_refresh_at", registered.NextRefreshAt)
		} else {
			processTask := NewProcessTimelineTask(config.Name, config, s.httpClient, s.sheetsClient, s.rssSource, s.timelineRepo, s.itemRepo, s.userAgent)
			if err := s.EnqueueTask(processTask); err != nil {
				slog.Warn("Failed to enqueue ProcessTimelineTask", "timeline", config.Name, "error", err)
			}
		}

		if config.Settings.ExtractText {
			extractTask := NewExtractTextTask(config.Name, config, s.httpClient, s.textExtractor, s.itemRepo, s.userAgent)
			if err := s.EnqueueTask(extractTask); err != nil {
				slog.Warn("Failed to enqueue ExtractTextTask", "timeline", config.Name, "error", err)
			}
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "timeline", task.GetTimelineName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
