// Package transport maintains the WebSocket channel to the game server.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AHARH1ST777/wordweave/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from the peer.
	maxMessageSize = 65536

	// Size of the inbound message buffer.
	messageBufferSize = 64
)

// ErrClosed marks a send attempted while the channel is not open. Such
// sends are dropped, not queued or retried.
var ErrClosed = errors.New("connection is not open")

// Client is the long-lived bidirectional channel to the server. One client
// per application instance; the client id is embedded in the connection
// target and used by the server to attribute outcomes.
type Client struct {
	conn     *websocket.Conn
	logger   zerolog.Logger
	messages chan protocol.Message
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// Dial connects to serverURL's /ws/{clientID} endpoint and starts the read
// loop.
func Dial(ctx context.Context, serverURL, clientID string, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = path.Join(u.Path, "ws", clientID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}
	client := &Client{
		conn:     conn,
		logger:   logger,
		messages: make(chan protocol.Message, messageBufferSize),
		done:     make(chan struct{}),
	}
	go client.readPump()
	logger.Info().Str("url", u.String()).Msg("connected")
	return client, nil
}

// NewDisconnected returns a client whose channel never opens. Sends report
// ErrClosed and no message ever arrives; the UI stays usable offline.
func NewDisconnected(logger zerolog.Logger) *Client {
	return &Client{
		logger:   logger,
		messages: make(chan protocol.Message),
		done:     make(chan struct{}),
		closed:   true,
	}
}

// Messages returns the inbound message stream, in arrival order. The
// channel closes when the connection ends.
func (c *Client) Messages() <-chan protocol.Message {
	return c.messages
}

// Send serializes and writes one outbound intent. Fire-and-forget: there is
// no acknowledgement and no retry.
func (c *Client) Send(out protocol.Outbound) error {
	data, err := protocol.Encode(out)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", out.Action, err)
	}
	return nil
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// readPump decodes inbound frames and delivers them on the messages
// channel. Malformed frames and unknown tags are logged and skipped; they
// never end the session.
func (c *Client) readPump() {
	defer func() {
		close(c.messages)
		if err := c.Close(); err != nil {
			// Best-effort close after read failure.
			_ = err
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			var unknown *protocol.ErrUnknownType
			if errors.As(err, &unknown) {
				c.logger.Debug().Str("tag", unknown.Tag).Msg("skipping unknown message type")
			} else {
				c.logger.Warn().Err(err).Msg("skipping malformed frame")
			}
			continue
		}
		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}
