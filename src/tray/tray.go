// Package tray owns the notification-area icon and its menu.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

const title = "Screen Cropper"

// Menu holds the callbacks for the tray menu. Nil callbacks hide their item.
type Menu struct {
	OnCapture     func()
	OnCaptureSave func()
	OnQuit        func()
}

var (
	mu         sync.Mutex
	ready      bool
	tooltip    string
	aboutExtra string
	aboutItem  *systray.MenuItem
)

// Run shows the tray icon and blocks until Quit is called.
func Run(m Menu) {
	systray.Run(func() { onReady(m) }, func() { log.Printf("Tray exited") })
}

// Quit removes the tray icon and makes Run return.
func Quit() { systray.Quit() }

// UpdateTooltip sets the icon tooltip. Calls made before the tray is ready
// are applied once it is.
func UpdateTooltip(text string) {
	mu.Lock()
	defer mu.Unlock()
	tooltip = text
	if ready {
		systray.SetTooltip(text)
	}
}

// SetAboutExtra shows an extra informational line in the menu.
func SetAboutExtra(text string) {
	mu.Lock()
	defer mu.Unlock()
	aboutExtra = text
	if ready && aboutItem != nil {
		aboutItem.SetTitle(text)
		aboutItem.Show()
	}
}

func onReady(m Menu) {
	if icon, err := iconBytes(); err != nil {
		log.Printf("Tray icon unavailable: %v", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(title)

	header := systray.AddMenuItem(title, "")
	header.Disable()
	about := systray.AddMenuItem("", "")
	about.Disable()
	systray.AddSeparator()

	mCapture := addItem("Capture to clipboard", "Select a region and copy it", m.OnCapture)
	mSave := addItem("Capture to file", "Select a region and save it", m.OnCaptureSave)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	mu.Lock()
	ready = true
	aboutItem = about
	if tooltip == "" {
		tooltip = title
	}
	systray.SetTooltip(tooltip)
	if aboutExtra != "" {
		about.SetTitle(aboutExtra)
	} else {
		about.Hide()
	}
	mu.Unlock()

	go func() {
		for {
			select {
			case <-clicked(mCapture):
				m.OnCapture()
			case <-clicked(mSave):
				m.OnCaptureSave()
			case <-mQuit.ClickedCh:
				log.Printf("Tray: quit requested")
				if m.OnQuit != nil {
					m.OnQuit()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func addItem(label, tip string, cb func()) *systray.MenuItem {
	if cb == nil {
		return nil
	}
	return systray.AddMenuItem(label, tip)
}

// clicked returns the item's click channel, or nil (never ready) for a
// hidden item.
func clicked(item *systray.MenuItem) chan struct{} {
	if item == nil {
		return nil
	}
	return item.ClickedCh
}
