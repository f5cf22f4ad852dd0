package ai

import (
	"context"
)

// DefaultMaxConcurrent is the default cap on in-flight AI calls
const DefaultMaxConcurrent = 4

// Dispatcher bounds the number of concurrent calls to a TextService. Callers
// block until a slot frees up or their context is cancelled.
type Dispatcher struct {
	svc   TextService
	slots chan struct{}
}

// NewDispatcher wraps svc with a concurrency bound of maxConcurrent.
func NewDispatcher(svc TextService, maxConcurrent int) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Dispatcher{
		svc:   svc,
		slots: make(chan struct{}, maxConcurrent),
	}
}

func (d *Dispatcher) acquire(ctx context.Context) error {
	select {
	case d.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) release() {
	<-d.slots
}

// Summarize forwards to the wrapped service once a slot is available
func (d *Dispatcher) Summarize(ctx context.Context, content string) (string, error) {
	if err := d.acquire(ctx); err != nil {
		return "", err
	}
	defer d.release()
	return d.svc.Summarize(ctx, content)
}

// SuggestTasks forwards to the wrapped service once a slot is available
func (d *Dispatcher) SuggestTasks(ctx context.Context, content string) ([]string, error) {
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.release()
	return d.svc.SuggestTasks(ctx, content)
}

var (
	_ TextService = (*Dispatcher)(nil)
	_ TextService = (*OpenAIProvider)(nil)
)
