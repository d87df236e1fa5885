package solat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []DayTimes
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, dt DayTimes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, dt)
	return f.err
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func TestPublishOnce(t *testing.T) {
	svc := newTestService(t, source.StaticLoader{Text: apiCSV})
	pub := &fakePublisher{}

	require.True(t, svc.PublishOnce(context.Background(), pub))
	require.Equal(t, 1, pub.count())
	assert.Equal(t, "2025-09-05", pub.published[0].Date)
	assert.Equal(t, timetable.StatusMatched, pub.published[0].Status)
}

func TestPublishOnce_PublishesFailures(t *testing.T) {
	svc := newTestService(t, source.StaticLoader{Text: ""})
	pub := &fakePublisher{}

	assert.True(t, svc.PublishOnce(context.Background(), pub))
	require.Equal(t, 1, pub.count())
	assert.Equal(t, timetable.StatusStructural, pub.published[0].Status)
}

func TestPublishOnce_PublisherError(t *testing.T) {
	svc := newTestService(t, source.StaticLoader{Text: apiCSV})
	assert.False(t, svc.PublishOnce(context.Background(), &fakePublisher{err: errors.New("broker gone")}))
}

func TestStartPublisher_RunsImmediatelyAndStops(t *testing.T) {
	svc := newTestService(t, source.StaticLoader{Text: apiCSV})
	pub := &fakePublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartPublisher(ctx, pub, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pub.count() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}
