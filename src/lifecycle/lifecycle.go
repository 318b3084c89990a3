// Package lifecycle provides a minimal start/stop state holder that notifies
// observers on transitions.
package lifecycle

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("module", "lifecycle")

// State is the current lifecycle position of a Registry.
type State int

const (
	StateInitialized State = iota
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event drives a Registry between states.
type Event int

const (
	EventStart Event = iota
	EventStop
)

// Observer is notified when its Registry starts or stops.
type Observer interface {
	OnStart()
	OnStop()
}

// ObserverFuncs adapts plain functions to Observer. Nil funcs are skipped.
type ObserverFuncs struct {
	Start func()
	Stop  func()
}

func (o ObserverFuncs) OnStart() {
	if o.Start != nil {
		o.Start()
	}
}

func (o ObserverFuncs) OnStop() {
	if o.Stop != nil {
		o.Stop()
	}
}

// Registry holds a lifecycle state and its observers. Observers are notified
// only when an event changes the state, in registration order, outside the
// registry lock.
type Registry struct {
	mu        sync.Mutex
	state     State
	observers []Observer
}

// NewRegistry creates a Registry in StateInitialized.
func NewRegistry() *Registry {
	return &Registry{state: StateInitialized}
}

// CurrentState returns the registry state.
func (r *Registry) CurrentState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// AddObserver registers o. If the registry is already started, o receives
// OnStart immediately.
func (r *Registry) AddObserver(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	started := r.state == StateStarted
	r.mu.Unlock()

	if started {
		o.OnStart()
	}
}

// HandleEvent applies e and notifies observers when the state changes.
func (r *Registry) HandleEvent(e Event) {
	target := StateStarted
	if e == EventStop {
		target = StateStopped
	}

	r.mu.Lock()
	if r.state == target || (target == StateStopped && r.state == StateInitialized) {
		r.mu.Unlock()
		return
	}
	r.state = target
	observers := append([]Observer(nil), r.observers...)
	r.mu.Unlock()

	logger.WithField("state", target.String()).Debug("Lifecycle transition")

	for _, o := range observers {
		if target == StateStarted {
			o.OnStart()
		} else {
			o.OnStop()
		}
	}
}

// UnavailableConnectionOwner is a lifecycle that is started while the network
// is unavailable and stopped once it comes back.
type UnavailableConnectionOwner struct {
	registry *Registry
}

// NewUnavailableConnectionOwner creates an owner with a fresh registry.
func NewUnavailableConnectionOwner() *UnavailableConnectionOwner {
	return &UnavailableConnectionOwner{registry: NewRegistry()}
}

// OnConnectionLost starts the lifecycle.
func (u *UnavailableConnectionOwner) OnConnectionLost() {
	u.registry.HandleEvent(EventStart)
}

// OnConnectionAvailable stops the lifecycle.
func (u *UnavailableConnectionOwner) OnConnectionAvailable() {
	u.registry.HandleEvent(EventStop)
}

// AddObserver registers o with the underlying registry.
func (u *UnavailableConnectionOwner) AddObserver(o Observer) {
	u.registry.AddObserver(o)
}

// Lifecycle exposes the underlying registry.
func (u *UnavailableConnectionOwner) Lifecycle() *Registry {
	return u.registry
}
