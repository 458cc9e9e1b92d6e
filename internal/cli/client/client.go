package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/mvasek/keva-go/pkg/resp"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// ErrServerError is wrapped around protocol error replies so callers
// can tell a server-side error from a transport failure.
var ErrServerError = errors.New("client: server error")

// Client is a single-connection wire-protocol client.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	buf     []byte
	pending []byte
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Dial connects to a server.
func Dial(addr string, opts ...Option) (*Client, error) {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := net.DialTimeout("tcp", addr, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	c.conn = conn
	return c, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one command (as an array of bulk strings) and returns the
// decoded reply. An Error reply is returned as a non-nil error wrapping
// ErrServerError, with the zero Value.
func (c *Client) Do(args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("client: empty command")
	}

	items := make([]resp.Value, 0, len(args))
	for _, a := range args {
		items = append(items, resp.BulkStringText(a))
	}

	c.buf = resp.Append(c.buf[:0], resp.Array(items...))

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return resp.Value{}, err
	}
	if _, err := c.conn.Write(c.buf); err != nil {
		return resp.Value{}, fmt.Errorf("client: write: %w", err)
	}

	return c.readReply()
}

// readReply accumulates bytes until one complete frame decodes.
func (c *Client) readReply() (resp.Value, error) {
	deadline := time.Now().Add(c.timeout)
	chunk := make([]byte, 4096)

	for {
		if len(c.pending) > 0 {
			v, rest, err := resp.Decode(c.pending)
			if err == nil {
				c.pending = append(c.pending[:0], rest...)
				if v.Type == resp.TypeError {
					return resp.Value{}, fmt.Errorf("%w: %s", ErrServerError, v.Str)
				}
				return v, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return resp.Value{}, fmt.Errorf("client: decode reply: %w", err)
			}
		}

		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return resp.Value{}, err
		}
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.pending = append(c.pending, chunk[:n]...)
			continue
		}
		if err != nil {
			return resp.Value{}, fmt.Errorf("client: read: %w", err)
		}
	}
}

// Ping checks liveness.
func (c *Client) Ping() error {
	v, err := c.Do("PING")
	if err != nil {
		return err
	}
	if v.Type != resp.TypeSimpleString || v.Str != "PONG" {
		return fmt.Errorf("client: unexpected ping reply %v", v)
	}
	return nil
}

// Get reads a key.
func (c *Client) Get(key string) (resp.Value, error) {
	return c.Do("GET", key)
}

// Set writes a key. A positive ttl is sent as a PX modifier.
func (c *Client) Set(key, value string, ttl time.Duration) error {
	var err error
	if ttl > 0 {
		_, err = c.Do("SET", key, value, "PX", fmt.Sprintf("%d", ttl.Milliseconds()))
	} else {
		_, err = c.Do("SET", key, value)
	}
	return err
}
