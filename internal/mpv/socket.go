package mpv

import (
	"context"
	"net"
	"strings"
)

const DefaultSocketPath = "/tmp/mpvsocket"

// socketNetwork picks tcp for host:port addresses and unix for filesystem
// paths.
func socketNetwork(socketPath string) string {
	if !strings.HasPrefix(socketPath, "/") && !strings.HasPrefix(socketPath, ".") && strings.Contains(socketPath, ":") {
		return "tcp"
	}
	return "unix"
}

func dialSocket(ctx context.Context, socketPath string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, socketNetwork(socketPath), socketPath)
}
