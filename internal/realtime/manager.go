// Package realtime manages the chat WebSocket channel: a single duplex
// connection tied to the session token, multiplexing inbound messages to
// the active conversation or a roster unread marker.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/coder/websocket"
)

// ErrChannelClosed is returned by Send when no channel is open. The
// compose form stays usable only while the channel is open.
var ErrChannelClosed = errors.New("realtime channel is closed")

// outboundFrame is the wire format for sent messages.
type outboundFrame struct {
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
}

// inboundFrame is the wire format for received messages.
type inboundFrame struct {
	SenderID int64  `json:"sender_id"`
	Content  string `json:"content"`
}

// Handlers receive inbound traffic. ActiveRecipient reports the currently
// open conversation partner (0 when none); OnMessage appends to the
// transcript; OnUnread marks a roster entry.
type Handlers struct {
	ActiveRecipient func() int64
	OnMessage       func(domain.ChatMessage)
	OnUnread        func(senderID int64)
}

// Manager owns the single realtime channel. At most one connection is
// alive at a time; a channel opened for one token is never reused after
// logout.
type Manager struct {
	endpoint string
	handlers Handlers

	mu         sync.Mutex
	conn       *websocket.Conn
	boundToken string
	cancel     context.CancelFunc
}

// NewManager creates a channel manager targeting the same backend host as
// the gateway. The transport is derived from the base URL scheme; an
// encrypted origin never downgrades to a plaintext channel.
func NewManager(baseURL string) (*Manager, error) {
	endpoint, err := channelEndpoint(baseURL)
	if err != nil {
		return nil, err
	}
	return &Manager{endpoint: endpoint}, nil
}

// SetHandlers installs the inbound dispatch handlers. Must be called
// before Open.
func (m *Manager) SetHandlers(h Handlers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = h
}

// Open dials the channel with the given token. Opening while a channel is
// already live is a no-op; a live channel is never silently replaced.
func (m *Manager) Open(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		if token != m.boundToken {
			slog.Warn("Realtime channel already open under a different token; keeping the live channel")
		}
		return nil
	}

	conn, _, err := websocket.Dial(ctx, m.endpoint+"?token="+url.QueryEscape(token), nil)
	if err != nil {
		return fmt.Errorf("dial realtime channel: %w", err)
	}

	// The read loop outlives the dialing context; it stops when Close
	// cancels it or the connection drops.
	loopCtx, cancel := context.WithCancel(context.Background())
	m.conn = conn
	m.boundToken = token
	m.cancel = cancel

	go m.readLoop(loopCtx, conn)

	slog.Info("Realtime channel opened")
	return nil
}

// IsOpen reports whether a channel is currently live.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Send delivers a message to a recipient over the open channel.
func (m *Manager) Send(ctx context.Context, recipientID int64, content string) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return ErrChannelClosed
	}

	data, err := json.Marshal(outboundFrame{RecipientID: recipientID, Content: content})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Close shuts the channel down. Closing an already-closed or absent
// channel is a safe no-op. Called by the router on view exit and by
// session teardown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked(websocket.StatusNormalClosure, "channel closed")
}

func (m *Manager) closeLocked(status websocket.StatusCode, reason string) {
	if m.conn == nil {
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if err := m.conn.Close(status, reason); err != nil {
		slog.Debug("Failed to close realtime channel", "error", err)
	}
	m.conn = nil
	m.boundToken = ""
	slog.Info("Realtime channel closed", "reason", reason)
}

// readLoop dispatches inbound frames until the connection drops. There is
// no automatic reconnect; the user re-enters the messaging view.
func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("Realtime channel read loop ended", "error", err)
			} else {
				slog.Warn("Realtime channel read error", "error", err)
			}
			m.mu.Lock()
			if m.conn == conn {
				m.closeLocked(websocket.StatusNormalClosure, "connection lost")
			}
			m.mu.Unlock()
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.Warn("Discarding malformed realtime frame", "error", err)
			continue
		}
		m.dispatch(frame)
	}
}

// dispatch routes one inbound message: append to the transcript when the
// sender is the active conversation partner, otherwise raise the unread
// indicator without interrupting the active conversation.
func (m *Manager) dispatch(frame inboundFrame) {
	m.mu.Lock()
	h := m.handlers
	m.mu.Unlock()

	active := int64(0)
	if h.ActiveRecipient != nil {
		active = h.ActiveRecipient()
	}

	if frame.SenderID == active && h.OnMessage != nil {
		h.OnMessage(domain.ChatMessage{SenderID: frame.SenderID, Content: frame.Content})
		return
	}
	if h.OnUnread != nil {
		h.OnUnread(frame.SenderID)
	}
}

// channelEndpoint maps the backend base URL to the realtime endpoint.
func channelEndpoint(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/chat/ws"
	return u.String(), nil
}
