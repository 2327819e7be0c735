package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/stretchr/testify/assert"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestCollectorPublishesTrackedEvents(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 8)
	c.Start(context.Background())

	c.Track(SearchEvent{Type: EventSearch, Query: "cat", Returned: 2, Timestamp: time.Now()})
	c.Track(SearchEvent{Type: EventZeroResult, Query: "dog", NoResult: true})
	c.Close()

	assert.Equal(t, 2, pub.count())
	assert.Equal(t, "analytics", pub.events[0].Key)
	ev, ok := pub.events[1].Value.(SearchEvent)
	assert.True(t, ok)
	assert.Equal(t, "dog", ev.Query)
}

func TestCollectorKeepsGoingOnPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 0)
	c.Start(context.Background())
	c.Track(IndexEvent{Type: EventIndexDoc, DocumentID: 1})
	c.Track(IndexEvent{Type: EventRemoveDoc, DocumentID: 1})
	c.Close()
	assert.Equal(t, 2, pub.count())
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 1)
	c.Track(SearchEvent{Query: "a"})
	c.Track(SearchEvent{Query: "b"})
	c.Start(context.Background())
	c.Close()
	assert.Equal(t, 1, pub.count())
}
