package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

const dialTimeout = 2 * time.Second

type tcpClient struct{}

func newTCPClient() Client { return &tcpClient{} }

// TryRunOnce waits for the resident's answer with no deadline of its own,
// since the user may take any amount of time to pick a region. Only ctx can
// cut it short.
func (c *tcpClient) TryRunOnce(ctx context.Context, mode Mode) (bool, string, error) {
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return false, "", nil
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(ctx, addr) {
			continue
		}
		conn, err := dial(ctx, addr)
		if err != nil {
			continue
		}
		payload, err := c.exchange(ctx, conn, mode)
		return true, payload, err
	}
	return false, "", nil
}

func dial(ctx context.Context, addr string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func (c *tcpClient) exchange(ctx context.Context, conn net.Conn, mode Mode) (string, error) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(mode.String() + "\n"); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case "SUCCESS\n":
		return string(body), nil
	case "ERROR\n":
		return "", errors.New(string(body))
	default:
		return "", errors.New("unexpected response from resident: " + status)
	}
}
