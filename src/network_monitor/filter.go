package network_monitor

import (
	"strings"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
)

// interfaceAllowed applies the ignore and only lists. Bridge interfaces are
// local LAN bridges and never count as upstream connectivity.
func interfaceAllowed(name string, config *config_manager.NetworkMonitorConfig) bool {
	if strings.HasPrefix(name, "br-") {
		return false
	}
	if config == nil {
		return true
	}
	for _, ignored := range config.IgnoreInterfaces {
		if name == ignored {
			return false
		}
	}
	if len(config.OnlyInterfaces) > 0 {
		for _, allowed := range config.OnlyInterfaces {
			if name == allowed {
				return true
			}
		}
		return false
	}
	return true
}
