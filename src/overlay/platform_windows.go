//go:build windows

package overlay

import (
	"fmt"
	"image"
	"log"
	"syscall"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"screen-cropper/src/selection"
)

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	procSetClassLongPtr        = user32.NewProc("SetClassLongPtrW")
	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
	shcore                     = windows.NewLazySystemDLL("Shcore.dll")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
)

const (
	gclpHCursor               = -12
	processPerMonitorDPIAware = 2
)

// enableDPIAwareness makes window sizes and mouse coordinates physical pixels.
func enableDPIAwareness() {
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness enabled")
			return
		}
		log.Printf("DPI: SetProcessDpiAwareness failed, code %d", ret)
	}
	if err := procSetProcessDPIAware.Find(); err == nil {
		if ret, _, _ := procSetProcessDPIAware.Call(); ret != 0 {
			log.Printf("DPI: system awareness enabled (fallback)")
		}
	}
}

func findWindow(title string) (win.HWND, error) {
	name, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	hwnd := win.FindWindow(nil, name)
	if hwnd == 0 {
		return 0, fmt.Errorf("window %q not found", title)
	}
	return hwnd, nil
}

// placeWindow turns the overlay into a borderless topmost popup covering b.
func placeWindow(title string, b image.Rectangle) error {
	hwnd, err := findWindow(title)
	if err != nil {
		return err
	}
	style := uint32(win.WS_POPUP | win.WS_VISIBLE)
	win.SetWindowLong(hwnd, win.GWL_STYLE, int32(style))
	if !win.SetWindowPos(hwnd, win.HWND_TOPMOST,
		int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()),
		win.SWP_FRAMECHANGED|win.SWP_SHOWWINDOW) {
		return fmt.Errorf("SetWindowPos failed for %q", title)
	}
	win.SetForegroundWindow(hwnd)
	return nil
}

var cursorIDs = map[selection.CursorIcon]uintptr{
	selection.CursorArrow:      win.IDC_ARROW,
	selection.CursorCrosshair:  win.IDC_CROSS,
	selection.CursorResizeNWSE: win.IDC_SIZENWSE,
	selection.CursorResizeNESW: win.IDC_SIZENESW,
	selection.CursorMove:       win.IDC_SIZEALL,
}

// setClassCursor replaces the class cursor so the icon survives WM_SETCURSOR.
func setClassCursor(title string, cursor win.HCURSOR) {
	hwnd, err := findWindow(title)
	if err != nil {
		return
	}
	if err := procSetClassLongPtr.Find(); err == nil {
		idx := int32(gclpHCursor)
		procSetClassLongPtr.Call(uintptr(hwnd), uintptr(idx), uintptr(cursor))
	}
	win.SetCursor(cursor)
}

func setCursor(title string, icon selection.CursorIcon) {
	id, ok := cursorIDs[icon]
	if !ok {
		id = win.IDC_ARROW
	}
	setClassCursor(title, win.LoadCursor(0, win.MAKEINTRESOURCE(id)))
}

func setCursorVisible(title string, visible bool) {
	if visible {
		return
	}
	setClassCursor(title, 0)
}
