package network_monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

type subscriber struct {
	ch   chan NetworkState
	done chan struct{}
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// NetworkMonitor aggregates per-network notifications from a
// ConnectivityService into a single availability signal.
//
// Every mutation of the valid network set republishes the derived state, even
// when it did not change. Publication happens on separate goroutines, so two
// quick mutations may reach subscribers in either order.
type NetworkMonitor struct {
	service ConnectivityService

	mu            sync.Mutex
	validNetworks map[NetworkHandle]struct{}
	running       bool
	ctx           context.Context
	cancel        context.CancelFunc
	publishers    sync.WaitGroup

	subMu       sync.RWMutex
	subscribers map[int]*subscriber
	nextSubID   int

	state atomic.Int32
}

// NewNetworkMonitor creates a monitor backed by service. The initial state is
// NetworkAvailable until the first publish.
func NewNetworkMonitor(service ConnectivityService) *NetworkMonitor {
	nm := &NetworkMonitor{
		service:       service,
		validNetworks: make(map[NetworkHandle]struct{}),
		subscribers:   make(map[int]*subscriber),
	}
	nm.state.Store(int32(NetworkAvailable))
	return nm
}

// Start registers with the connectivity service, seeds the valid set with the
// currently active networks and publishes the resulting state.
func (nm *NetworkMonitor) Start() error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if nm.running {
		return fmt.Errorf("network monitor is already running")
	}

	logger.Info("Starting network monitor")

	nm.ctx, nm.cancel = context.WithCancel(context.Background())
	if err := nm.service.RegisterCallback(nm); err != nil {
		nm.cancel()
		return fmt.Errorf("failed to register network callback: %w", err)
	}
	nm.running = true

	networks, err := nm.service.ActiveNetworks()
	if err != nil {
		logger.WithError(err).Warn("Failed to list active networks, seeding empty")
	} else {
		for _, handle := range networks {
			nm.validNetworks[handle] = struct{}{}
		}
	}

	nm.checkValidNetworks()
	return nil
}

// Stop clears the valid set, unregisters from the connectivity service and
// cancels pending publishes. No state is delivered after Stop returns.
func (nm *NetworkMonitor) Stop() error {
	nm.mu.Lock()
	if !nm.running {
		nm.mu.Unlock()
		return nil
	}

	logger.Info("Stopping network monitor")

	nm.running = false
	clear(nm.validNetworks)
	nm.cancel()
	nm.mu.Unlock()

	// The service may be blocked delivering a callback that waits on nm.mu,
	// so unregister only after releasing it.
	err := nm.service.UnregisterCallback(nm)
	nm.publishers.Wait()

	if err != nil {
		return fmt.Errorf("failed to unregister network callback: %w", err)
	}
	return nil
}

// OnAvailable adds handle to the valid set if the service still reports it as
// internet-capable, then republishes.
func (nm *NetworkMonitor) OnAvailable(handle NetworkHandle) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if !nm.running {
		return
	}

	if nm.service.HasInternet(handle) {
		nm.validNetworks[handle] = struct{}{}
	}
	logger.WithFields(logrus.Fields{
		"network":        handle.String(),
		"valid_networks": len(nm.validNetworks),
	}).Debug("Network available")

	nm.checkValidNetworks()
}

// OnLost removes handle from the valid set and republishes.
func (nm *NetworkMonitor) OnLost(handle NetworkHandle) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if !nm.running {
		return
	}

	delete(nm.validNetworks, handle)
	logger.WithFields(logrus.Fields{
		"network":        handle.String(),
		"valid_networks": len(nm.validNetworks),
	}).Debug("Network lost")

	nm.checkValidNetworks()
}

// checkValidNetworks computes the state from the valid set and hands it to a
// publisher goroutine. Callers hold nm.mu.
func (nm *NetworkMonitor) checkValidNetworks() {
	state := stateFor(len(nm.validNetworks))
	ctx := nm.ctx

	nm.publishers.Add(1)
	go func() {
		defer nm.publishers.Done()
		nm.publish(ctx, state)
	}()
}

// publish delivers state to a snapshot of the subscribers. Sends happen
// outside subMu so a full subscriber never blocks Subscribe or unsubscribe.
func (nm *NetworkMonitor) publish(ctx context.Context, state NetworkState) {
	if ctx.Err() != nil {
		return
	}
	nm.state.Store(int32(state))

	nm.subMu.RLock()
	subs := make([]*subscriber, 0, len(nm.subscribers))
	for _, sub := range nm.subscribers {
		subs = append(subs, sub)
	}
	nm.subMu.RUnlock()

	for _, sub := range subs {
		select {
		case <-sub.done:
			continue
		default:
		}

		select {
		case sub.ch <- state:
		case <-sub.done:
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe registers a new observer of published states. The returned
// function unsubscribes; the channel itself is never closed.
func (nm *NetworkMonitor) Subscribe() (<-chan NetworkState, func()) {
	sub := &subscriber{
		ch:   make(chan NetworkState, subscriberBuffer),
		done: make(chan struct{}),
	}

	nm.subMu.Lock()
	id := nm.nextSubID
	nm.nextSubID++
	nm.subscribers[id] = sub
	nm.subMu.Unlock()

	return sub.ch, func() {
		sub.close()
		nm.subMu.Lock()
		delete(nm.subscribers, id)
		nm.subMu.Unlock()
	}
}

// State returns the last published state.
func (nm *NetworkMonitor) State() NetworkState {
	return NetworkState(nm.state.Load())
}

// ActiveNetworks returns a snapshot of the valid network set.
func (nm *NetworkMonitor) ActiveNetworks() []NetworkHandle {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	handles := make([]NetworkHandle, 0, len(nm.validNetworks))
	for handle := range nm.validNetworks {
		handles = append(handles, handle)
	}
	return handles
}

// IsRunning reports whether the monitor is started.
func (nm *NetworkMonitor) IsRunning() bool {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.running
}

var _ NetworkCallback = (*NetworkMonitor)(nil)
