//go:build linux
// +build linux

package network_monitor

import (
	"fmt"
	"net"
	"sync"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// netlinkConnectivity implements ConnectivityService using event-driven
// netlink link and route subscriptions. A link is internet-capable when it
// is up, not a loopback, and carries a default route.
type netlinkConnectivity struct {
	config  *config_manager.NetworkMonitorConfig
	capable func(NetworkHandle) bool

	mu        sync.Mutex
	callbacks []NetworkCallback
	reported  map[NetworkHandle]bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
	running   bool
}

// NewConnectivityService creates the netlink-backed connectivity service.
func NewConnectivityService(config *config_manager.NetworkMonitorConfig) ConnectivityService {
	nc := &netlinkConnectivity{
		config:   config,
		reported: make(map[NetworkHandle]bool),
	}
	nc.capable = nc.HasInternet
	return nc
}

func (nc *netlinkConnectivity) RegisterCallback(cb NetworkCallback) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	for _, existing := range nc.callbacks {
		if existing == cb {
			return fmt.Errorf("callback is already registered")
		}
	}
	nc.callbacks = append(nc.callbacks, cb)

	if nc.running {
		return nil
	}

	linkUpdates := make(chan netlink.LinkUpdate)
	linkDone := make(chan struct{})
	if err := netlink.LinkSubscribe(linkUpdates, linkDone); err != nil {
		nc.callbacks = nc.callbacks[:len(nc.callbacks)-1]
		return fmt.Errorf("failed to subscribe to link updates: %w", err)
	}

	routeUpdates := make(chan netlink.RouteUpdate)
	routeDone := make(chan struct{})
	if err := netlink.RouteSubscribe(routeUpdates, routeDone); err != nil {
		close(linkDone)
		nc.callbacks = nc.callbacks[:len(nc.callbacks)-1]
		return fmt.Errorf("failed to subscribe to route updates: %w", err)
	}

	nc.stopChan = make(chan struct{})
	nc.running = true
	nc.wg.Add(2)
	go nc.monitorLinkChanges(linkUpdates, linkDone)
	go nc.monitorRouteChanges(routeUpdates, routeDone)

	logger.Info("Subscribed to netlink link and route changes")
	return nil
}

func (nc *netlinkConnectivity) UnregisterCallback(cb NetworkCallback) error {
	nc.mu.Lock()
	idx := -1
	for i, existing := range nc.callbacks {
		if existing == cb {
			idx = i
			break
		}
	}
	if idx < 0 {
		nc.mu.Unlock()
		return fmt.Errorf("callback is not registered")
	}
	nc.callbacks = append(nc.callbacks[:idx], nc.callbacks[idx+1:]...)

	if len(nc.callbacks) > 0 || !nc.running {
		nc.mu.Unlock()
		return nil
	}

	close(nc.stopChan)
	nc.running = false
	clear(nc.reported)
	nc.mu.Unlock()

	nc.wg.Wait()
	logger.Info("Unsubscribed from netlink changes")
	return nil
}

func (nc *netlinkConnectivity) monitorLinkChanges(updates chan netlink.LinkUpdate, done chan struct{}) {
	defer nc.wg.Done()

	for {
		select {
		case <-nc.stopChan:
			close(done)
			return
		case update, ok := <-updates:
			if !ok {
				logger.Warn("Link update channel closed")
				return
			}
			if update.Link == nil || update.Link.Attrs() == nil {
				continue
			}
			nc.evaluate(NetworkHandle(update.Link.Attrs().Index))
		}
	}
}

func (nc *netlinkConnectivity) monitorRouteChanges(updates chan netlink.RouteUpdate, done chan struct{}) {
	defer nc.wg.Done()

	for {
		select {
		case <-nc.stopChan:
			close(done)
			return
		case update, ok := <-updates:
			if !ok {
				logger.Warn("Route update channel closed")
				return
			}
			if !isDefaultRoute(update.Route) {
				continue
			}
			nc.evaluate(NetworkHandle(update.Route.LinkIndex))
		}
	}
}

// evaluate compares the current capability of handle with what was last
// reported and dispatches OnAvailable or OnLost on a change.
func (nc *netlinkConnectivity) evaluate(handle NetworkHandle) {
	capable := nc.capable(handle)

	nc.mu.Lock()
	if !nc.running || nc.reported[handle] == capable {
		nc.mu.Unlock()
		return
	}
	if capable {
		nc.reported[handle] = true
	} else {
		delete(nc.reported, handle)
	}
	callbacks := append([]NetworkCallback(nil), nc.callbacks...)
	nc.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"network": handle.String(),
		"capable": capable,
	}).Debug("Network capability changed")

	for _, cb := range callbacks {
		if capable {
			cb.OnAvailable(handle)
		} else {
			cb.OnLost(handle)
		}
	}
}

// ActiveNetworks lists every monitored link that currently has internet
// capability and marks them as reported.
func (nc *netlinkConnectivity) ActiveNetworks() ([]NetworkHandle, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list network links: %w", err)
	}

	var handles []NetworkHandle
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil {
			continue
		}
		handle := NetworkHandle(attrs.Index)
		if nc.linkHasInternet(link) {
			handles = append(handles, handle)
		}
	}

	nc.mu.Lock()
	for _, handle := range handles {
		nc.reported[handle] = true
	}
	nc.mu.Unlock()

	return handles, nil
}

func (nc *netlinkConnectivity) HasInternet(handle NetworkHandle) bool {
	link, err := netlink.LinkByIndex(int(handle))
	if err != nil {
		return false
	}
	return nc.linkHasInternet(link)
}

func (nc *netlinkConnectivity) linkHasInternet(link netlink.Link) bool {
	if !nc.linkEligible(link.Attrs()) {
		return false
	}
	attrs := link.Attrs()

	routes, err := netlink.RouteList(link, netlink.FAMILY_ALL)
	if err != nil {
		logger.WithError(err).WithField("interface", attrs.Name).Debug("Error getting routes for interface")
		return false
	}
	for _, route := range routes {
		if isDefaultRoute(route) {
			return true
		}
	}
	return false
}

// linkEligible reports whether a link may carry internet traffic at all:
// allowed by the interface filter, up and not a loopback.
func (nc *netlinkConnectivity) linkEligible(attrs *netlink.LinkAttrs) bool {
	if attrs == nil || !nc.shouldMonitorInterface(attrs.Name) {
		return false
	}
	return attrs.Flags&net.FlagUp != 0 && attrs.Flags&net.FlagLoopback == 0
}

// shouldMonitorInterface checks if an interface should be monitored
func (nc *netlinkConnectivity) shouldMonitorInterface(name string) bool {
	return interfaceAllowed(name, nc.config)
}

// isDefaultRoute reports whether route has no destination or a zero-length
// prefix with an unspecified address.
func isDefaultRoute(route netlink.Route) bool {
	if route.Dst == nil {
		return true
	}
	ones, _ := route.Dst.Mask.Size()
	return ones == 0 && route.Dst.IP.IsUnspecified()
}
