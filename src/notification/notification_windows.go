//go:build windows

package notification

import (
	"log"
	"syscall"

	"github.com/go-toast/toast"
	"github.com/lxn/win"
)

const appID = "Screen Cropper"

type toastNotifier struct{}

func newPlatformNotifier() Notifier { return toastNotifier{} }

// Show pushes a toast in the background so delivery never waits on the shell.
func (toastNotifier) Show(title, message string) error {
	go func() {
		n := toast.Notification{
			AppID:   appID,
			Title:   title,
			Message: truncate(message, 200),
		}
		if err := n.Push(); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
	return nil
}

// ShowBlockingError shows a modal error box.
func ShowBlockingError(title, message string) {
	t, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		log.Printf("%s: %s", title, message)
		return
	}
	m, err := syscall.UTF16PtrFromString(message)
	if err != nil {
		log.Printf("%s: %s", title, message)
		return
	}
	win.MessageBox(0, m, t, win.MB_OK|win.MB_ICONERROR|win.MB_TOPMOST)
}
