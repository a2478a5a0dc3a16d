// Package mpv talks to a running mpv over its JSON IPC socket and launches
// mpv processes that expose one.
//
// Protocol reference: https://mpv.io/manual/stable/#json-ipc
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

const defaultCommandTimeout = 5 * time.Second

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcResponse struct {
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
}

// Client is a single IPC connection. Commands are serialized; it is safe for
// concurrent use.
type Client struct {
	socketPath string
	timeout    time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID int64
	closed bool
}

type Option func(*Client)

// WithTimeout bounds each command round trip. Non-positive values keep the
// default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func Dial(ctx context.Context, socketPath string, opts ...Option) (*Client, error) {
	conn, err := dialSocket(ctx, socketPath)
	if err != nil {
		return nil, &TransportError{Op: "dial " + socketPath, Err: err}
	}
	return newClient(conn, socketPath, opts...), nil
}

func newClient(conn net.Conn, socketPath string, opts ...Option) *Client {
	c := &Client{
		socketPath: socketPath,
		timeout:    defaultCommandTimeout,
		conn:       conn,
		reader:     bufio.NewReader(conn),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SocketPath() string {
	return c.socketPath
}

// Command sends one command and waits for its reply. Event lines and replies
// to other request ids are skipped.
func (c *Client) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	name := commandName(args)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.nextID++
	id := c.nextID
	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("mpv: marshal %s: %w", name, err)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, c.failLocked("set deadline", err)
	}

	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		return nil, c.failLocked("write "+name, err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, c.failLocked("read "+name, err)
		}
		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" || resp.RequestID != id {
			continue
		}
		if resp.Error != "success" {
			return nil, &CommandError{Command: name, Message: resp.Error}
		}
		return resp.Data, nil
	}
}

func (c *Client) GetProperty(ctx context.Context, name string, out any) error {
	data, err := c.Command(ctx, "get_property", name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("mpv: decode property %s: %w", name, err)
	}
	return nil
}

func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// ClearPlaylist removes every entry except the one currently playing.
func (c *Client) ClearPlaylist(ctx context.Context) error {
	_, err := c.Command(ctx, "playlist-clear")
	return err
}

// AppendFile queues url as a file entry at the end of the playlist.
func (c *Client) AppendFile(ctx context.Context, url string) error {
	_, err := c.Command(ctx, "loadfile", url, "append")
	return err
}

func (c *Client) PlaylistCount(ctx context.Context) (int, error) {
	var count int
	if err := c.GetProperty(ctx, "playlist-count", &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Client) PlayIndex(ctx context.Context, index int) error {
	return c.SetProperty(ctx, "playlist-pos", index)
}

// RemoveEntry drops the playlist entry at index. Removing the entry that is
// playing stops it and advances to the next one.
func (c *Client) RemoveEntry(ctx context.Context, index int) error {
	_, err := c.Command(ctx, "playlist-remove", index)
	return err
}

func (c *Client) Paused(ctx context.Context) (bool, error) {
	var paused bool
	if err := c.GetProperty(ctx, "pause", &paused); err != nil {
		return false, err
	}
	return paused, nil
}

func (c *Client) SetPaused(ctx context.Context, paused bool) error {
	return c.SetProperty(ctx, "pause", paused)
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Client) failLocked(op string, err error) error {
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
	}
	return &TransportError{Op: op, Err: err}
}
