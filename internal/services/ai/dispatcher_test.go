package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type blockingTextService struct {
	release  chan struct{}
	inflight int64
	maxSeen  int64
}

func (s *blockingTextService) Summarize(ctx context.Context, content string) (string, error) {
	cur := atomic.AddInt64(&s.inflight, 1)
	defer atomic.AddInt64(&s.inflight, -1)
	for {
		max := atomic.LoadInt64(&s.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt64(&s.maxSeen, max, cur) {
			break
		}
	}
	<-s.release
	return "summary", nil
}

func (s *blockingTextService) SuggestTasks(ctx context.Context, content string) ([]string, error) {
	<-s.release
	return []string{"task"}, nil
}

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	svc := &blockingTextService{release: make(chan struct{})}
	d := NewDispatcher(svc, 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Summarize(context.Background(), "content"); err != nil {
				t.Errorf("Summarize() error = %v", err)
			}
		}()
	}

	// Let goroutines pile up behind the semaphore before releasing them.
	time.Sleep(50 * time.Millisecond)
	close(svc.release)
	wg.Wait()

	if max := atomic.LoadInt64(&svc.maxSeen); max > 2 {
		t.Errorf("max concurrent calls = %d, want <= 2", max)
	}
}

func TestDispatcher_ContextCancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	svc := &blockingTextService{release: make(chan struct{})}
	d := NewDispatcher(svc, 1)

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = d.Summarize(context.Background(), "content")
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Summarize(ctx, "content"); err != context.Canceled {
		t.Errorf("Summarize() with cancelled context error = %v, want context.Canceled", err)
	}

	close(svc.release)
}

func TestNewDispatcher_DefaultBound(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&blockingTextService{release: make(chan struct{})}, 0)
	if cap(d.slots) != DefaultMaxConcurrent {
		t.Errorf("slot capacity = %d, want %d", cap(d.slots), DefaultMaxConcurrent)
	}
}
