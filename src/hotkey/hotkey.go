package hotkey

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers hotkeyConfig (for example "Ctrl+Alt+A") and calls callback
// from the hook goroutine every time the whole combination is down. The hook
// stops when ctx ends.
func Listen(ctx context.Context, hotkeyConfig string, callback func()) error {
	c, err := newCombo(hotkeyConfig)
	if err != nil {
		return err
	}
	log.Printf("Hotkey listener configured for: %s", hotkeyConfig)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		defer gohook.End()

		for {
			select {
			case <-ctx.Done():
				log.Printf("Hotkey listener stopped")
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Printf("Event channel closed")
					return
				}
				if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
					continue
				}
				if c.handle(ev.Kind == gohook.KeyDown, ev.Rawcode) {
					log.Printf("Hotkey activated: %s", hotkeyConfig)
					if callback != nil {
						callback()
					}
				}
			}
		}
	}()
	return nil
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// combo tracks which keys of one hotkey are currently held.
type combo struct {
	mu   sync.Mutex
	keys []keyState
	// latched is set once the combo fires and cleared when one of its keys
	// is released, so auto-repeat does not fire it again.
	latched bool
}

func newCombo(hotkeyConfig string) (*combo, error) {
	c := &combo{}
	for _, name := range parseHotkey(hotkeyConfig) {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("cannot map key %q in hotkey %q", name, hotkeyConfig)
		}
		c.keys = append(c.keys, keyState{name: name, rawcodes: rawcodes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("no valid keys in hotkey configuration %q", hotkeyConfig)
	}
	return c, nil
}

// handle records a key transition and reports whether it completed the
// combination.
func (c *combo) handle(down bool, rawcode uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	matched := false
	for i := range c.keys {
		for _, rc := range c.keys[i].rawcodes {
			if rc == rawcode {
				c.keys[i].pressed = down
				matched = true
				break
			}
		}
	}
	if !matched {
		return false
	}
	if !down {
		c.latched = false
		return false
	}
	if c.latched {
		return false
	}
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	c.latched = true
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "cmd", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// Windows virtual key codes for named keys. Letters, digits and F-keys are
// computed in keyNameToRawcodes.
var namedKeys = map[string][]uint16{
	"ctrl":        {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":         {164, 165}, // VK_LMENU, VK_RMENU
	"shift":       {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":         {91, 92},   // VK_LWIN, VK_RWIN
	"win":         {91, 92},
	"super":       {91, 92},
	"control":     {162, 163},
	"space":       {32},
	"enter":       {13},
	"return":      {13},
	"esc":         {27},
	"escape":      {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"del":         {46},
	"insert":      {45},
	"ins":         {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pgup":        {33},
	"pagedown":    {34},
	"pgdn":        {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44}, // VK_SNAPSHOT
	"prtsc":       {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes
// Returns a slice of rawcodes (e.g., both left and right variants for modifiers)
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		switch ch := keyName[0]; {
		case ch >= 'a' && ch <= 'z':
			return []uint16{uint16(65 + ch - 'a')}
		case ch >= '0' && ch <= '9':
			return []uint16{uint16(48 + ch - '0')}
		}
	}
	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 is 112
		}
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
