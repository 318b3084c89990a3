//go:build !linux
// +build !linux

package network_monitor

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
)

const pollInterval = 5 * time.Second

// pollingConnectivity is a fallback for non-Linux systems. It polls the
// interface table and treats an up, non-loopback interface with a global
// unicast address as internet-capable.
type pollingConnectivity struct {
	config *config_manager.NetworkMonitorConfig

	mu        sync.Mutex
	callbacks []NetworkCallback
	reported  map[NetworkHandle]bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
	running   bool
}

// NewConnectivityService creates a polling connectivity service for non-Linux systems
func NewConnectivityService(config *config_manager.NetworkMonitorConfig) ConnectivityService {
	logger.Warn("Using polling connectivity service - netlink functionality only available on Linux")
	return &pollingConnectivity{
		config:   config,
		reported: make(map[NetworkHandle]bool),
	}
}

func (pc *pollingConnectivity) RegisterCallback(cb NetworkCallback) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	for _, existing := range pc.callbacks {
		if existing == cb {
			return fmt.Errorf("callback is already registered")
		}
	}
	pc.callbacks = append(pc.callbacks, cb)

	if !pc.running {
		pc.stopChan = make(chan struct{})
		pc.running = true
		pc.wg.Add(1)
		go pc.poll()
	}
	return nil
}

func (pc *pollingConnectivity) UnregisterCallback(cb NetworkCallback) error {
	pc.mu.Lock()
	idx := -1
	for i, existing := range pc.callbacks {
		if existing == cb {
			idx = i
			break
		}
	}
	if idx < 0 {
		pc.mu.Unlock()
		return fmt.Errorf("callback is not registered")
	}
	pc.callbacks = append(pc.callbacks[:idx], pc.callbacks[idx+1:]...)

	if len(pc.callbacks) > 0 || !pc.running {
		pc.mu.Unlock()
		return nil
	}
	close(pc.stopChan)
	pc.running = false
	clear(pc.reported)
	pc.mu.Unlock()

	pc.wg.Wait()
	return nil
}

func (pc *pollingConnectivity) poll() {
	defer pc.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pc.stopChan:
			return
		case <-ticker.C:
			pc.scan()
		}
	}
}

func (pc *pollingConnectivity) scan() {
	interfaces, err := net.Interfaces()
	if err != nil {
		logger.WithError(err).Warn("Failed to list interfaces")
		return
	}

	seen := make(map[NetworkHandle]bool)
	for _, iface := range interfaces {
		if pc.interfaceHasInternet(iface) {
			seen[NetworkHandle(iface.Index)] = true
		}
	}

	pc.mu.Lock()
	if !pc.running {
		pc.mu.Unlock()
		return
	}
	var up, down []NetworkHandle
	for handle := range seen {
		if !pc.reported[handle] {
			pc.reported[handle] = true
			up = append(up, handle)
		}
	}
	for handle := range pc.reported {
		if !seen[handle] {
			delete(pc.reported, handle)
			down = append(down, handle)
		}
	}
	callbacks := append([]NetworkCallback(nil), pc.callbacks...)
	pc.mu.Unlock()

	for _, cb := range callbacks {
		for _, handle := range down {
			cb.OnLost(handle)
		}
		for _, handle := range up {
			cb.OnAvailable(handle)
		}
	}
}

func (pc *pollingConnectivity) ActiveNetworks() ([]NetworkHandle, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	var handles []NetworkHandle
	for _, iface := range interfaces {
		if pc.interfaceHasInternet(iface) {
			handles = append(handles, NetworkHandle(iface.Index))
		}
	}

	pc.mu.Lock()
	for _, handle := range handles {
		pc.reported[handle] = true
	}
	pc.mu.Unlock()
	return handles, nil
}

func (pc *pollingConnectivity) HasInternet(handle NetworkHandle) bool {
	iface, err := net.InterfaceByIndex(int(handle))
	if err != nil {
		return false
	}
	return pc.interfaceHasInternet(*iface)
}

func (pc *pollingConnectivity) interfaceHasInternet(iface net.Interface) bool {
	if !interfaceAllowed(iface.Name, pc.config) {
		return false
	}
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.IsGlobalUnicast() {
			return true
		}
	}
	return false
}
