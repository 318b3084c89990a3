package network_monitor

import (
	"testing"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/stretchr/testify/assert"
)

func TestInterfaceAllowed(t *testing.T) {
	ignore := &config_manager.NetworkMonitorConfig{IgnoreInterfaces: []string{"lo", "docker0"}}
	only := &config_manager.NetworkMonitorConfig{OnlyInterfaces: []string{"wlan0"}}

	tests := []struct {
		name   string
		iface  string
		config *config_manager.NetworkMonitorConfig
		want   bool
	}{
		{"nil config allows", "eth0", nil, true},
		{"bridge always skipped", "br-lan", nil, false},
		{"ignored interface", "docker0", ignore, false},
		{"not ignored", "eth0", ignore, true},
		{"only list match", "wlan0", only, true},
		{"only list miss", "eth0", only, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interfaceAllowed(tt.iface, tt.config))
		})
	}
}
