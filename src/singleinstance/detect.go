package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

const pingTimeout = 300 * time.Millisecond

// DetectResidentPort scans the port range and returns (port, true) for the
// first port whose listener answers PING with PONG. Free ports and foreign
// listeners are skipped.
func DetectResidentPort(ctx context.Context) (int, bool) {
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(ctx, addr) {
			return port, true
		}
	}
	return 0, false
}

func ping(ctx context.Context, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
