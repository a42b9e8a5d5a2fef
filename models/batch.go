package models

import "sync"

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchRequest is the payload for POST /api/v1/batch/scrape.
type BatchRequest struct {
	// URLs is the list of target pages to capture. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=20,dive,url"`

	// Options contains shared capture options applied to all URLs.
	Options BatchOptions `json:"options"`

	// Webhook, when set, receives a batch.completed event.
	Webhook string `json:"webhook,omitempty" binding:"omitempty,url"`
}

// BatchOptions are the shared capture settings applied to every URL in a batch.
type BatchOptions struct {
	Timeout        int  `json:"timeout,omitempty" binding:"omitempty,min=1,max=300"`
	Stealth        bool `json:"stealth,omitempty"`
	BlockAds       bool `json:"block_ads,omitempty"`
	RemoveOverlays bool `json:"remove_overlays,omitempty"`
}

// ScrapeRequest builds a per-URL request from the shared options.
func (o BatchOptions) ScrapeRequest(url string) *ScrapeRequest {
	r := &ScrapeRequest{
		URL:            url,
		Timeout:        o.Timeout,
		Stealth:        o.Stealth,
		BlockAds:       o.BlockAds,
		RemoveOverlays: o.RemoveOverlays,
	}
	r.Defaults()
	return r
}

// BatchResponse is the immediate response for POST /api/v1/batch/scrape.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
	Results   []*ScrapeResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch capture. All access goes through
// its methods; results are written by worker goroutines.
type BatchJob struct {
	ID        string
	CreatedAt int64 // unix timestamp

	mu        sync.Mutex
	status    string
	total     int
	completed int
	failed    int
	results   []*ScrapeResponse
}

// NewBatchJob creates a job in the processing state with total slots.
func NewBatchJob(id string, total int, createdAt int64) *BatchJob {
	return &BatchJob{
		ID:        id,
		CreatedAt: createdAt,
		status:    BatchProcessing,
		total:     total,
		results:   make([]*ScrapeResponse, total),
	}
}

// Record stores the result for slot idx.
func (j *BatchJob) Record(idx int, resp *ScrapeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results[idx] = resp
	if resp.Success {
		j.completed++
	} else {
		j.failed++
	}
}

// Finish derives the terminal status from the recorded results.
func (j *BatchJob) Finish() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.failed == j.total:
		j.status = BatchFailed
	case j.failed > 0:
		j.status = BatchPartial
	default:
		j.status = BatchCompleted
	}
	return j.status
}

// Snapshot returns a consistent copy of the job state.
func (j *BatchJob) Snapshot() BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]*ScrapeResponse, len(j.results))
	copy(results, j.results)
	return BatchStatusResponse{
		ID:        j.ID,
		Status:    j.status,
		Completed: j.completed + j.failed,
		Failed:    j.failed,
		Total:     j.total,
		Results:   results,
	}
}
