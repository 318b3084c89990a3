package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("module", "analytics")

// Event names tracked by the service.
const (
	EventRecipeFetched      = "recipe_fetched"
	EventRecipeFetchFailed  = "recipe_fetch_failed"
	EventTriviaFetched      = "trivia_fetched"
	EventNetworkAvailable   = "network_available"
	EventNetworkUnavailable = "network_unavailable"
)

// HashTag marks every published analytics note.
const HashTag = "awareness-food"

const publishTimeout = 10 * time.Second

// Analytics records named events with string attributes.
type Analytics interface {
	TrackEvent(name string, attrs map[string]string)
}

// Publisher delivers a signed event to one relay.
type Publisher interface {
	Publish(ctx context.Context, relayURL string, event nostr.Event) error
}

// poolPublisher publishes through a shared nostr relay pool.
type poolPublisher struct {
	pool *nostr.SimplePool
}

// NewPoolPublisher creates a Publisher backed by a nostr.SimplePool.
func NewPoolPublisher(ctx context.Context) Publisher {
	return &poolPublisher{pool: nostr.NewSimplePool(ctx)}
}

func (p *poolPublisher) Publish(ctx context.Context, relayURL string, event nostr.Event) error {
	relay, err := p.pool.EnsureRelay(relayURL)
	if err != nil {
		return fmt.Errorf("failed to connect to relay %s: %w", relayURL, err)
	}
	if err := relay.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish to relay %s: %w", relayURL, err)
	}
	return nil
}

// NostrAnalytics logs every event and, when enabled, publishes it as a signed
// text note to the configured relays. Publishing never blocks the caller.
type NostrAnalytics struct {
	config    config_manager.AnalyticsConfig
	publisher Publisher
	wg        sync.WaitGroup
}

// New creates a NostrAnalytics. publisher may be nil when analytics
// publishing is disabled.
func New(config config_manager.AnalyticsConfig, publisher Publisher) (*NostrAnalytics, error) {
	if config.Enabled {
		if publisher == nil {
			return nil, fmt.Errorf("analytics enabled without a publisher")
		}
		if _, err := nostr.GetPublicKey(config.PrivateKey); err != nil {
			return nil, fmt.Errorf("invalid analytics private key: %w", err)
		}
	}
	return &NostrAnalytics{config: config, publisher: publisher}, nil
}

// TrackEvent logs the event and schedules its publication.
func (a *NostrAnalytics) TrackEvent(name string, attrs map[string]string) {
	fields := logrus.Fields{"event": name}
	for k, v := range attrs {
		fields[k] = v
	}
	logger.WithFields(fields).Info("Analytics event")

	if !a.config.Enabled || len(a.config.Relays) == 0 {
		return
	}

	event, err := BuildEvent(a.config.PrivateKey, name, attrs)
	if err != nil {
		logger.WithError(err).WithField("event", name).Warn("Failed to build analytics event")
		return
	}

	for _, relayURL := range a.config.Relays {
		a.wg.Add(1)
		go func(relayURL string) {
			defer a.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := a.publisher.Publish(ctx, relayURL, event); err != nil {
				logger.WithError(err).WithField("relay", relayURL).Debug("Analytics publish failed")
			}
		}(relayURL)
	}
}

// Flush waits for scheduled publications to finish.
func (a *NostrAnalytics) Flush() {
	a.wg.Wait()
}

// BuildEvent creates a signed kind-1 note for name. Attributes become tags in
// key order and are echoed in the content.
func BuildEvent(privateKey, name string, attrs map[string]string) (nostr.Event, error) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := nostr.Tags{{"t", HashTag}, {"event", name}}
	parts := []string{name}
	for _, k := range keys {
		tags = append(tags, nostr.Tag{k, attrs[k]})
		parts = append(parts, k+"="+attrs[k])
	}

	event := nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      nostr.KindTextNote,
		Tags:      tags,
		Content:   strings.Join(parts, " "),
	}
	if err := event.Sign(privateKey); err != nil {
		return nostr.Event{}, fmt.Errorf("failed to sign analytics event: %w", err)
	}
	return event, nil
}

var _ Analytics = (*NostrAnalytics)(nil)
