package network_monitor

import "strconv"

// NetworkHandle identifies one active network path. On Linux it is the
// kernel link index.
type NetworkHandle int

func (h NetworkHandle) String() string {
	return "net#" + strconv.Itoa(int(h))
}

// NetworkState is the aggregated availability published by the monitor.
type NetworkState int

const (
	NetworkAvailable NetworkState = iota
	NetworkUnavailable
)

func (s NetworkState) String() string {
	switch s {
	case NetworkAvailable:
		return "available"
	case NetworkUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// stateFor derives the availability from the number of valid networks.
func stateFor(validNetworks int) NetworkState {
	if validNetworks > 0 {
		return NetworkAvailable
	}
	return NetworkUnavailable
}
