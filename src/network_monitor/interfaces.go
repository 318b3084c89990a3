package network_monitor

// NetworkCallback receives per-network up/down notifications from a
// ConnectivityService.
type NetworkCallback interface {
	OnAvailable(handle NetworkHandle)
	OnLost(handle NetworkHandle)
}

// ConnectivityService is the platform source of network notifications.
//
// Implementations must deliver callbacks from their own goroutines and never
// synchronously from inside RegisterCallback or UnregisterCallback.
type ConnectivityService interface {
	// RegisterCallback starts delivering notifications for internet-capable
	// networks to cb.
	RegisterCallback(cb NetworkCallback) error
	// UnregisterCallback stops delivery to cb and returns once no callback
	// for it is in flight.
	UnregisterCallback(cb NetworkCallback) error
	// ActiveNetworks returns every network currently considered active.
	ActiveNetworks() ([]NetworkHandle, error)
	// HasInternet reports whether handle currently offers internet capability.
	HasInternet(handle NetworkHandle) bool
}
