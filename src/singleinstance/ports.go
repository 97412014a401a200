package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49600
	defaultPortEnd   = 49650

	minPort = 1024
	maxPort = 65535
)

// getPortRange returns the inclusive TCP port range to listen on or scan,
// from SINGLEINSTANCE_PORT_START and SINGLEINSTANCE_PORT_END. Unset or
// non-numeric values use the defaults; the result is clamped to unprivileged
// ports and swapped if reversed.
func getPortRange() (int, int) {
	start := envPort("SINGLEINSTANCE_PORT_START", defaultPortStart)
	end := envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd)
	if end < start {
		start, end = end, start
	}
	return max(start, minPort), min(end, maxPort)
}

func envPort(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// GetPortRangeForDebug exposes the current effective port range for logging/debugging.
func GetPortRangeForDebug() (int, int) { return getPortRange() }
