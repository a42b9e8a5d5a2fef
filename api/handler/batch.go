package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/sitemodel/models"
	"github.com/use-agent/sitemodel/webhook"
)

// BatchStore holds all in-flight and completed batch jobs. Jobs older than
// the TTL are swept in the background until Close.
type BatchStore struct {
	jobs sync.Map
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

// NewBatchStore starts the expiry sweeper.
func NewBatchStore(ttl time.Duration) *BatchStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &BatchStore{ttl: ttl, stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(time.Now())
			case <-s.stop:
				return
			}
		}
	}()
	return s
}

// Put stores job under its ID.
func (s *BatchStore) Put(job *models.BatchJob) { s.jobs.Store(job.ID, job) }

// Get looks a job up by ID.
func (s *BatchStore) Get(id string) (*models.BatchJob, bool) {
	v, ok := s.jobs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*models.BatchJob), true
}

// Close stops the sweeper.
func (s *BatchStore) Close() { s.once.Do(func() { close(s.stop) }) }

func (s *BatchStore) sweep(now time.Time) {
	cutoff := now.Add(-s.ttl).Unix()
	s.jobs.Range(func(key, value any) bool {
		if value.(*models.BatchJob).CreatedAt < cutoff {
			s.jobs.Delete(key)
		}
		return true
	})
}

// PostBatch returns a handler for POST /api/v1/batch/scrape.
// It validates the request, creates a batch job, and captures the URLs in
// the background with at most concurrency sessions at once. Each URL gets
// its own session; one failure does not affect the others.
func PostBatch(cp Capturer, store *BatchStore, notifier *webhook.Notifier, concurrency int) gin.HandlerFunc {
	if concurrency <= 0 {
		concurrency = 1
	}
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}

		job := models.NewBatchJob("batch-"+uuid.NewString(), len(req.URLs), time.Now().Unix())
		store.Put(job)

		// Launch captures in background.
		go func() {
			runBatch(context.Background(), cp, job, req, concurrency)
			if req.Webhook != "" && notifier != nil {
				notifier.DeliverAsync(req.Webhook, completedEvent(job))
			}
		}()

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: models.BatchProcessing,
			Total:  len(req.URLs),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch(store *BatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := store.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "batch job not found",
				},
			})
			return
		}
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// runBatch processes all URLs in a batch job with concurrency limited by a semaphore.
func runBatch(ctx context.Context, cp Capturer, job *models.BatchJob, req models.BatchRequest, concurrency int) {
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			job.Record(idx, scrapeOne(ctx, cp, req.Options.ScrapeRequest(targetURL)))
		}(i, rawURL)
	}
	wg.Wait()

	status := job.Finish()
	snap := job.Snapshot()
	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"failed", snap.Failed,
		"total", snap.Total,
	)
}

// scrapeOne captures a single URL and packs the outcome as a ScrapeResponse.
func scrapeOne(ctx context.Context, cp Capturer, req *models.ScrapeRequest) *models.ScrapeResponse {
	totalStart := time.Now()
	site, captureMs, err := capture(ctx, cp, req)
	timing := models.TimingInfo{
		TotalMs:   time.Since(totalStart).Milliseconds(),
		CaptureMs: captureMs,
	}
	if err != nil {
		return &models.ScrapeResponse{Success: false, Error: errorDetail(err), Timing: timing}
	}
	return &models.ScrapeResponse{Success: true, Site: site, Timing: timing}
}

func completedEvent(job *models.BatchJob) *webhook.Event {
	snap := job.Snapshot()
	return &webhook.Event{
		Type:      webhook.EventBatchCompleted,
		JobID:     job.ID,
		Timestamp: time.Now().Unix(),
		Data: webhook.BatchSummary{
			Status:    snap.Status,
			Total:     snap.Total,
			Succeeded: snap.Completed - snap.Failed,
			Failed:    snap.Failed,
		},
	}
}
