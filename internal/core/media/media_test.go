package media

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria-downloader/internal/shared"
)

// fakePending scripts one orchestrator item. It doubles as its own Media
// so tests can fail either phase independently.
type fakePending struct {
	id         string
	resolveErr error
	ripErr     error
	stats      *shared.DownloadStats
	onRip      func()
}

func (f *fakePending) ID() string { return f.id }

func (f *fakePending) Resolve(ctx context.Context) (Media, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f, nil
}

func (f *fakePending) Rip(ctx context.Context) (*shared.DownloadStats, error) {
	if f.onRip != nil {
		f.onRip()
	}
	if f.ripErr != nil {
		return nil, f.ripErr
	}
	if f.stats != nil {
		return f.stats, nil
	}
	return &shared.DownloadStats{SuccessCount: 1}, nil
}

func TestRipAllIsolatesFailures(t *testing.T) {
	items := make([]Pending, 0, 12)
	for i := 1; i <= 12; i++ {
		f := &fakePending{id: fmt.Sprintf("item-%d", i)}
		if i == 5 {
			f.resolveErr = fmt.Errorf("metadata gone")
		}
		items = append(items, f)
	}

	stats := RipAll(context.Background(), items, 10)

	assert.Equal(t, 11, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailedCount)
	assert.Equal(t, 0, stats.SkippedCount)
	require.Len(t, stats.FailedItems, 1)
	assert.Contains(t, stats.FailedItems[0], "item-5")
	assert.Contains(t, stats.FailedItems[0], "metadata gone")
}

func TestRipAllChunkBarrier(t *testing.T) {
	var completed int32
	var mu sync.Mutex
	var violations []string

	items := make([]Pending, 0, 12)
	for i := 1; i <= 12; i++ {
		f := &fakePending{id: fmt.Sprintf("item-%d", i)}
		if i <= 10 {
			f.onRip = func() {
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
			}
		} else {
			id := f.id
			f.onRip = func() {
				if n := atomic.LoadInt32(&completed); n != 10 {
					mu.Lock()
					violations = append(violations, fmt.Sprintf("%s started with only %d of chunk one done", id, n))
					mu.Unlock()
				}
			}
		}
		items = append(items, f)
	}

	stats := RipAll(context.Background(), items, 10)

	assert.Empty(t, violations)
	assert.Equal(t, 12, stats.SuccessCount)
	assert.Equal(t, 0, stats.FailedCount)
}

func TestRipAllCountsSkips(t *testing.T) {
	items := []Pending{
		&fakePending{id: "fresh"},
		&fakePending{id: "seen", ripErr: shared.ErrAlreadyDownloaded},
		&fakePending{id: "seen-wrapped", ripErr: fmt.Errorf("track: %w", shared.ErrAlreadyDownloaded)},
		&fakePending{id: "broken", ripErr: fmt.Errorf("boom")},
	}

	stats := RipAll(context.Background(), items, 10)

	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 2, stats.SkippedCount)
	assert.Equal(t, 1, stats.FailedCount)
	require.Len(t, stats.FailedItems, 1)
	assert.Contains(t, stats.FailedItems[0], "broken")
}

func TestRipAllMergesChildStats(t *testing.T) {
	items := []Pending{
		&fakePending{id: "collection", stats: &shared.DownloadStats{
			SuccessCount: 5,
			SkippedCount: 2,
			FailedCount:  1,
			FailedItems:  []string{"inner track: boom"},
		}},
		&fakePending{id: "leaf"},
	}

	stats := RipAll(context.Background(), items, 10)

	assert.Equal(t, 6, stats.SuccessCount)
	assert.Equal(t, 2, stats.SkippedCount)
	assert.Equal(t, 1, stats.FailedCount)
	assert.Equal(t, []string{"inner track: boom"}, stats.FailedItems)
}

func TestRipAllEmpty(t *testing.T) {
	stats := RipAll(context.Background(), nil, 10)

	assert.Equal(t, 0, stats.SuccessCount)
	assert.Equal(t, 0, stats.SkippedCount)
	assert.Equal(t, 0, stats.FailedCount)
	assert.Empty(t, stats.FailedItems)
}

func TestRipAllDefaultChunkSize(t *testing.T) {
	items := []Pending{
		&fakePending{id: "a"},
		&fakePending{id: "b"},
		&fakePending{id: "c"},
	}

	stats := RipAll(context.Background(), items, 0)

	assert.Equal(t, 3, stats.SuccessCount)
}
