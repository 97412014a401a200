//go:build windows

package main

import (
	"log"

	"github.com/lxn/win"
)

const smCMonitors = 80 // SM_CMONITORS

// logMonitorConfiguration records what Windows reports about the desktop so
// placement problems on mixed-DPI setups can be read from the debug log.
func logMonitorConfiguration() {
	log.Printf("MONITOR: Detected %d monitors", win.GetSystemMetrics(smCMonitors))

	log.Printf("MONITOR: Virtual screen - x:%d y:%d w:%d h:%d",
		win.GetSystemMetrics(win.SM_XVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN))

	log.Printf("MONITOR: Primary screen - w:%d h:%d",
		win.GetSystemMetrics(win.SM_CXSCREEN),
		win.GetSystemMetrics(win.SM_CYSCREEN))

	logDisplays()
}
