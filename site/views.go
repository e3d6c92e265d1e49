package site

import (
	"context"
	"sync"
	"time"

	"walkintovoid/metrics"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type viewIncrementer interface {
	IncrementViews(ctx context.Context, postID string) error
}

// ViewCounter bumps post view counts in the background. A failed increment is
// logged and dropped; the read that triggered it has already been answered.
type ViewCounter struct {
	store   viewIncrementer
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewViewCounter(store viewIncrementer, logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) *ViewCounter {
	return &ViewCounter{store: store, logger: logger, metrics: m, timeout: timeout}
}

// Record starts the increment and returns at once. It deliberately ignores
// the request context, which is cancelled as soon as the response is written.
func (v *ViewCounter) Record(postID string) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		err := v.increment(postID)
		if v.metrics != nil {
			v.metrics.ViewIncrements.WithLabelValues(metrics.Result(err)).Inc()
		}
		if err != nil {
			v.logger.Warn("could not increment post views", zap.String("post_id", postID), zap.Error(err))
		}
	}()
}

func (v *ViewCounter) increment(postID string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic while incrementing views: %v", p)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return v.store.IncrementViews(ctx, postID)
}

// Wait blocks until every started increment has finished.
func (v *ViewCounter) Wait() {
	v.wg.Wait()
}
