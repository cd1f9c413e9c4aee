package unchained

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	logger "log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is reported to every open subscription when the
// socket drops.
var ErrConnectionClosed = errors.New("websocket connection closed")

type wsRequest struct {
	SubscriptionID string       `json:"subscriptionId"`
	Method         string       `json:"method"`
	Data           TxsTopicData `json:"data"`
}

type wsFrame struct {
	SubscriptionID string          `json:"subscriptionId"`
	Type           string          `json:"type"`
	Message        string          `json:"message"`
	Data           json.RawMessage `json:"data"`
}

type wsHandler struct {
	onMessage func(TxMessage)
	onError   func(error)
}

// WSClient multiplexes transaction subscriptions over one websocket
// connection. The connection is dialed on the first subscription and closed
// when the last one is removed. It never reconnects.
type WSClient struct {
	url    string
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]wsHandler

	writeMu sync.Mutex
}

// NewWSClient creates a client for the websocket endpoint at url.
func NewWSClient(url string) *WSClient {
	return &WSClient{
		url:      url,
		dialer:   websocket.DefaultDialer,
		handlers: make(map[string]wsHandler),
	}
}

// SubscribeTxs registers handlers under subscriptionID and asks the server
// for transactions matching data. Messages and errors for the subscription
// are delivered on the client's read goroutine.
func (c *WSClient) SubscribeTxs(
	ctx context.Context,
	subscriptionID string,
	data TxsTopicData,
	onMessage func(TxMessage),
	onError func(error),
) error {
	c.mu.Lock()
	if c.conn == nil {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("dial %s: %w", c.url, err)
		}
		c.conn = conn
		go c.readLoop(conn)
	}
	conn := c.conn
	c.handlers[subscriptionID] = wsHandler{onMessage: onMessage, onError: onError}
	c.mu.Unlock()

	req := wsRequest{SubscriptionID: subscriptionID, Method: "subscribe", Data: data}
	if err := c.write(conn, req); err != nil {
		c.mu.Lock()
		delete(c.handlers, subscriptionID)
		c.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", subscriptionID, err)
	}
	return nil
}

// UnsubscribeTxs removes the subscription so later frames for it are
// dropped. The last unsubscribe closes the connection.
func (c *WSClient) UnsubscribeTxs(subscriptionID string, data TxsTopicData) error {
	c.mu.Lock()
	if _, ok := c.handlers[subscriptionID]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.handlers, subscriptionID)
	conn := c.conn
	last := len(c.handlers) == 0
	if last {
		c.conn = nil
	}
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	req := wsRequest{SubscriptionID: subscriptionID, Method: "unsubscribe", Data: data}
	err := c.write(conn, req)
	if last {
		_ = c.closeConn(conn)
	}
	if err != nil {
		return fmt.Errorf("unsubscribe %s: %w", subscriptionID, err)
	}
	return nil
}

// Active returns the number of registered subscriptions.
func (c *WSClient) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

// Close drops every subscription and closes the connection.
func (c *WSClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.handlers = make(map[string]wsHandler)
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return c.closeConn(conn)
}

func (c *WSClient) write(conn *websocket.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (c *WSClient) closeConn(conn *websocket.Conn) error {
	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *WSClient) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.connectionLost(conn, err)
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			logger.Warn("Dropping undecodable websocket frame", "url", c.url, "error", err)
			continue
		}

		h, ok := c.handler(frame.SubscriptionID)
		if !ok {
			continue
		}

		if frame.Type == "error" {
			h.onError(fmt.Errorf("subscription %s: %s", frame.SubscriptionID, frame.Message))
			continue
		}

		var msg TxMessage
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			h.onError(fmt.Errorf("decode tx message: %w", err))
			continue
		}
		h.onMessage(msg)
	}
}

func (c *WSClient) handler(id string) (wsHandler, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handlers[id]
	return h, ok
}

// connectionLost notifies subscribers unless conn was closed on purpose.
func (c *WSClient) connectionLost(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	handlers := c.handlers
	c.handlers = make(map[string]wsHandler)
	c.mu.Unlock()

	logger.Warn("Websocket connection lost", "url", c.url, "error", cause)
	for _, h := range handlers {
		h.onError(fmt.Errorf("%w: %v", ErrConnectionClosed, cause))
	}
	_ = conn.Close()
}
