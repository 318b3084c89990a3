package analytics

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/fiatjaf/khatru"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRelay is an in-process khatru relay that keeps every accepted note.
type memoryRelay struct {
	mu     sync.Mutex
	events []*nostr.Event
}

func (m *memoryRelay) storeEvent(_ context.Context, event *nostr.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memoryRelay) stored() []*nostr.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*nostr.Event(nil), m.events...)
}

func startRelay(t *testing.T) (*memoryRelay, string) {
	t.Helper()
	store := &memoryRelay{}

	relay := khatru.NewRelay()
	relay.Info.Name = "awareness-food test relay"
	relay.StoreEvent = append(relay.StoreEvent, store.storeEvent)
	relay.RejectEvent = append(relay.RejectEvent, func(_ context.Context, event *nostr.Event) (bool, string) {
		if event.Kind != nostr.KindTextNote {
			return true, "only text notes"
		}
		return false, ""
	})

	server := httptest.NewServer(relay)
	t.Cleanup(server.Close)
	return store, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestPoolPublisherDeliversToRelay(t *testing.T) {
	store, relayURL := startRelay(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(config_manager.AnalyticsConfig{
		Enabled:    true,
		PrivateKey: testKey,
		Relays:     []string{relayURL},
	}, NewPoolPublisher(ctx))
	require.NoError(t, err)

	a.TrackEvent(EventRecipeFetched, map[string]string{"title": "Pasta"})
	a.Flush()

	require.Eventually(t, func() bool { return len(store.stored()) == 1 }, 5*time.Second, 20*time.Millisecond)

	event := store.stored()[0]
	ok, err := event.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, nostr.Tag{"t", HashTag}, event.Tags[0])
	assert.Equal(t, nostr.Tag{"title", "Pasta"}, event.Tags[2])
}

func TestPoolPublisherUnreachableRelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(nil)
	relayURL := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	publisher := NewPoolPublisher(ctx)
	event, err := BuildEvent(testKey, EventRecipeFetchFailed, nil)
	require.NoError(t, err)

	publishCtx, publishCancel := context.WithTimeout(ctx, 2*time.Second)
	defer publishCancel()
	assert.Error(t, publisher.Publish(publishCtx, relayURL, event))
}
