// Package network implements the NetworkMonitor port by probing the
// host's interfaces. A desktop cannot see the link type the way a phone
// can, so any connection counts as unmetered (Wi-Fi equivalent) unless
// network.metered is set in the config.
package network

import (
	"net"

	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

// Ensure Monitor implements the interface.
var _ driven.NetworkMonitor = (*Monitor)(nil)

// Monitor reports host connectivity.
type Monitor struct {
	config driven.ConfigStore

	// detect is swappable for tests.
	detect func() bool
}

// NewMonitor creates a monitor reading the metered override from config.
func NewMonitor(config driven.ConfigStore) *Monitor {
	return &Monitor{
		config: config,
		detect: hasRoutableInterface,
	}
}

// IsOnline returns true when any non-loopback interface is up with an
// address assigned.
func (m *Monitor) IsOnline() bool {
	return m.detect()
}

// IsWifi returns true when online and the connection is not declared
// metered.
func (m *Monitor) IsWifi() bool {
	if !m.IsOnline() {
		return false
	}
	if m.config == nil {
		return true
	}
	return !m.config.GetBool(driven.ConfigKeyMetered)
}

func hasRoutableInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return true
	}
	return false
}
