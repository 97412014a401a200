package singleinstance

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func TestServerClientRoundTrip(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "49641")
	t.Setenv("SINGLEINSTANCE_PORT_END", "49641")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	if port, ok := DetectResidentPort(ctx); !ok || port != 49641 {
		t.Fatalf("DetectResidentPort = %d, %v", port, ok)
	}

	client := NewClient()
	type result struct {
		delegated bool
		payload   string
		err       error
	}
	resCh := make(chan result, 1)
	go func() {
		delegated, payload, err := client.TryRunOnce(ctx, ModeSave)
		resCh <- result{delegated, payload, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().Mode != ModeSave {
		t.Errorf("mode = %v, want SAVE", conn.Request().Mode)
	}
	if err := conn.RespondSuccess("/tmp/shot.png"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	_ = conn.Close()

	res := <-resCh
	if res.err != nil || !res.delegated || res.payload != "/tmp/shot.png" {
		t.Fatalf("TryRunOnce = %+v", res)
	}
}

func TestClientReceivesError(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "49642")
	t.Setenv("SINGLEINSTANCE_PORT_END", "49642")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	errCh := make(chan error, 1)
	go func() {
		_, _, err := NewClient().TryRunOnce(ctx, ModeClipboard)
		errCh <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	_ = conn.RespondError("nothing selected")
	_ = conn.Close()

	if err := <-errCh; err == nil || err.Error() != "nothing selected" {
		t.Fatalf("client error = %v", err)
	}
}

func TestNoResident(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "49643")
	t.Setenv("SINGLEINSTANCE_PORT_END", "49643")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	delegated, _, err := NewClient().TryRunOnce(ctx, ModeClipboard)
	if delegated || err != nil {
		t.Fatalf("TryRunOnce = %v, %v; want no delegation", delegated, err)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeClipboard, ModeSave} {
		got, err := ParseMode(m.String() + "\n")
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("STDOUT\n"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPortRange(t *testing.T) {
	tests := []struct {
		start, end string
		wantStart  int
		wantEnd    int
	}{
		{"", "", defaultPortStart, defaultPortEnd},
		{"80", "2000", 1024, 2000},
		{"50000", "49000", 49000, 50000},
		{"junk", "70000", defaultPortStart, 65535},
	}
	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.end, func(t *testing.T) {
			t.Setenv("SINGLEINSTANCE_PORT_START", tt.start)
			t.Setenv("SINGLEINSTANCE_PORT_END", tt.end)
			s, e := GetPortRangeForDebug()
			if s != tt.wantStart || e != tt.wantEnd {
				t.Fatalf("range = %s, want %d-%d", strconv.Itoa(s)+"-"+strconv.Itoa(e), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestClientStopsScanningWhenCanceled(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "49644")
	t.Setenv("SINGLEINSTANCE_PORT_END", "49644")

	srvCtx, srvCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer srvCancel()
	srv := NewServer()
	if err := srv.Start(srvCtx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	delegated, _, err := NewClient().TryRunOnce(ctx, ModeClipboard)
	if delegated || err != nil {
		t.Fatalf("TryRunOnce = %v, %v; want no delegation after cancel", delegated, err)
	}
}
