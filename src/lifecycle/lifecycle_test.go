package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) OnStart() { r.events = append(r.events, "start") }
func (r *recordingObserver) OnStop()  { r.events = append(r.events, "stop") }

func TestRegistryTransitions(t *testing.T) {
	r := NewRegistry()
	obs := &recordingObserver{}
	r.AddObserver(obs)

	assert.Equal(t, StateInitialized, r.CurrentState())

	// Stopping a never-started registry is ignored.
	r.HandleEvent(EventStop)
	assert.Equal(t, StateInitialized, r.CurrentState())

	r.HandleEvent(EventStart)
	r.HandleEvent(EventStart)
	assert.Equal(t, StateStarted, r.CurrentState())

	r.HandleEvent(EventStop)
	r.HandleEvent(EventStop)
	assert.Equal(t, StateStopped, r.CurrentState())

	r.HandleEvent(EventStart)
	assert.Equal(t, []string{"start", "stop", "start"}, obs.events)
}

func TestAddObserverWhileStartedReplaysStart(t *testing.T) {
	r := NewRegistry()
	r.HandleEvent(EventStart)

	obs := &recordingObserver{}
	r.AddObserver(obs)
	assert.Equal(t, []string{"start"}, obs.events)
}

func TestUnavailableConnectionOwner(t *testing.T) {
	owner := NewUnavailableConnectionOwner()
	shown := 0
	dismissed := 0
	owner.AddObserver(ObserverFuncs{
		Start: func() { shown++ },
		Stop:  func() { dismissed++ },
	})

	owner.OnConnectionAvailable()
	assert.Equal(t, 0, dismissed)

	owner.OnConnectionLost()
	owner.OnConnectionLost()
	assert.Equal(t, 1, shown)
	assert.Equal(t, StateStarted, owner.Lifecycle().CurrentState())

	owner.OnConnectionAvailable()
	assert.Equal(t, 1, dismissed)
	assert.Equal(t, StateStopped, owner.Lifecycle().CurrentState())
}

func TestObserverFuncsNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserverFuncs{}.OnStart()
		ObserverFuncs{}.OnStop()
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "started", StateStarted.String())
	assert.Equal(t, "unknown", State(9).String())
}
