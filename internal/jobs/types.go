package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWarmCache = "cache:warm"
	QueueCache    = "cache"
)

// WarmCachePayload lists the last-dates counts to pre-populate. The
// unfiltered trading-result key is always warmed.
type WarmCachePayload struct {
	LastDates []int `json:"last_dates"`
}

// NewWarmCacheTask builds the daily warm-up task
func NewWarmCacheTask(p WarmCachePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal warm payload: %w", err)
	}
	return asynq.NewTask(TaskWarmCache, payload,
		asynq.Queue(QueueCache),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	), nil
}
