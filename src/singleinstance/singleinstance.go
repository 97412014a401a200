package singleinstance

// This file defines the API for single-instance ownership and run-once delegation.

import (
	"context"
	"fmt"
	"strings"
)

// Mode says what the resident should do with a committed crop.
type Mode int

const (
	ModeClipboard Mode = iota
	ModeSave
)

func (m Mode) String() string {
	if m == ModeSave {
		return "SAVE"
	}
	return "CLIPBOARD"
}

// ParseMode parses a request line without its trailing newline.
func ParseMode(line string) (Mode, error) {
	switch strings.TrimSpace(line) {
	case "CLIPBOARD":
		return ModeClipboard, nil
	case "SAVE":
		return ModeSave, nil
	default:
		return ModeClipboard, fmt.Errorf("unknown request %q", strings.TrimSpace(line))
	}
}

// Server owns the TCP endpoint and answers run-once requests.
type Server interface {
	// Start begins listening on the first port of the configured range and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success. For SAVE the payload is the saved path; for CLIPBOARD it is empty.
	RespondSuccess(payload string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request represents a single run-once client request.
type Request struct {
	Mode Mode
}

// Client attempts to delegate run-once invocation to a resident server.
type Client interface {
	// TryRunOnce scans the port range, performs handshake, and delegates to resident.
	// If no resident is found, returns delegated=false, err=nil.
	TryRunOnce(ctx context.Context, mode Mode) (delegated bool, payload string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTCPServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTCPClient() }
