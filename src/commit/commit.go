// Package commit delivers a committed crop to the clipboard or disk and
// reports the result to whoever asked for the crop.
package commit

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"screen-cropper/src/clipboard"
	"screen-cropper/src/coordinator"
	"screen-cropper/src/notification"
	"screen-cropper/src/session"
	"screen-cropper/src/singleinstance"
)

// ImageWriter puts an image on the clipboard.
type ImageWriter interface {
	WriteImage(img image.Image) error
}

// Saver writes an image to disk and returns its path.
type Saver interface {
	Save(img image.Image) (string, error)
}

// Deliverer performs the action chosen for a crop.
type Deliverer struct {
	Clipboard ImageWriter
	Storage   Saver
}

// SystemClipboard writes through the clipboard package.
type SystemClipboard struct{}

func (SystemClipboard) WriteImage(img image.Image) error { return clipboard.WriteImage(img) }

// Deliver copies or saves crop. For saves the payload is the file path.
func (d Deliverer) Deliver(action session.Action, crop image.Image) (string, error) {
	if crop == nil {
		return "", errors.New("no image to deliver")
	}
	switch action {
	case session.ActionCopy:
		if d.Clipboard == nil {
			return "", errors.New("clipboard not configured")
		}
		if err := d.Clipboard.WriteImage(crop); err != nil {
			return "", fmt.Errorf("clipboard error: %w", err)
		}
		return "", nil
	case session.ActionSave:
		if d.Storage == nil {
			return "", errors.New("storage not configured")
		}
		path, err := d.Storage.Save(crop)
		if err != nil {
			return "", fmt.Errorf("save error: %w", err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("action %s does not deliver anything", action)
	}
}

// Target receives the result of a crop request.
type Target interface {
	OnSuccess(action session.Action, payload string) error
	OnFailure(err error) error
}

// NotifyTarget reports to the user through notifications; used for hotkey and
// tray requests.
type NotifyTarget struct {
	Notifier notification.Notifier
}

func (t NotifyTarget) OnSuccess(action session.Action, payload string) error {
	if t.Notifier == nil {
		return nil
	}
	if action == session.ActionSave {
		return t.Notifier.Show("Screenshot saved", payload)
	}
	return t.Notifier.Show("Screenshot copied", "The selection is on the clipboard.")
}

func (t NotifyTarget) OnFailure(err error) error {
	if t.Notifier == nil || err == nil || errors.Is(err, coordinator.ErrNothingSelected) {
		return nil
	}
	return t.Notifier.Show("Screenshot failed", err.Error())
}

// StdoutTarget prints saved paths; used by a run-once process that found no
// resident to delegate to.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(action session.Action, payload string) error {
	if payload == "" {
		return nil
	}
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, payload)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}

// DelegatedTarget answers a run-once client over its connection.
type DelegatedTarget struct {
	Conn singleinstance.Conn
}

func (t DelegatedTarget) OnSuccess(action session.Action, payload string) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	return t.Conn.RespondSuccess(payload)
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}

// ActionForMode maps a run-once request mode to the Enter-key action.
func ActionForMode(m singleinstance.Mode) session.Action {
	if m == singleinstance.ModeSave {
		return session.ActionSave
	}
	return session.ActionCopy
}
