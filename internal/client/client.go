// Package client is a Go SDK for the pandapool WebSocket API.
//
// One Client wraps one connection. Calls may be made from any number of
// goroutines; replies are matched to callers by request id.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/pandapool/internal/protocol"
	"github.com/lox/pandapool/internal/rpcerr"
)

// ErrClosed is returned by calls made on, or interrupted by, a closed client.
var ErrClosed = errors.New("client closed")

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// Client represents a WebSocket client for the pool server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	pending   map[string]chan *protocol.Message
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, 64),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]chan *protocol.Message),
	}
}

// Dial creates a client and connects it.
func Dial(ctx context.Context, serverURL string, logger *log.Logger) (*Client, error) {
	c := NewClient(serverURL, logger)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// WebSocketURL converts an http(s) or ws(s) base URL to the /ws endpoint.
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", serverURL)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Debug("Connecting to server", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()

	c.logger.Debug("Connected to server")
	return nil
}

// Close closes the WebSocket connection and fails outstanding calls.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			err = c.conn.Close()
		}
	})
	return err
}

// readPump routes replies to waiting callers
func (c *Client) readPump() {
	defer func() { _ = c.Close() }()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				c.ctx.Err() == nil {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()

		if !ok {
			c.logger.Debug("Dropping unsolicited message", "type", msg.Type, "requestId", msg.RequestID)
			continue
		}
		ch <- &msg
	}
}

// writePump serialises writes to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				_ = c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// call sends one request and decodes the reply into resp. Server errors
// come back as *rpcerr.Error.
func (c *Client) call(ctx context.Context, typ protocol.MessageType, req, resp any) error {
	id := uuid.NewString()
	msg, err := protocol.NewRequest(typ, id, req)
	if err != nil {
		return err
	}

	reply := make(chan *protocol.Message, 1)
	c.mu.Lock()
	c.pending[id] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	select {
	case c.send <- msg:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrClosed
	}

	select {
	case m := <-reply:
		return decodeReply(m, resp)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrClosed
	}
}

func decodeReply(m *protocol.Message, resp any) error {
	if m.Type == protocol.TypeError {
		var data protocol.ErrorData
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return fmt.Errorf("decode error reply: %w", err)
		}
		return &rpcerr.Error{Kind: rpcerr.ParseKind(data.Code), Message: data.Message}
	}
	if m.Type != protocol.TypeResult {
		return fmt.Errorf("unexpected reply type %q", m.Type)
	}
	if resp == nil || len(m.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Data, resp); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// CreateRoom opens a room and takes seat 0.
func (c *Client) CreateRoom(ctx context.Context) (protocol.CreateRoomResponse, error) {
	var resp protocol.CreateRoomResponse
	err := c.call(ctx, protocol.TypeCreateRoom, protocol.CreateRoomRequest{}, &resp)
	return resp, err
}

// JoinRoom takes seat 1 of room code and returns its token.
func (c *Client) JoinRoom(ctx context.Context, code string) (string, error) {
	var resp protocol.JoinRoomResponse
	err := c.call(ctx, protocol.TypeJoinRoom, protocol.JoinRoomRequest{RoomCode: normalizeCode(code)}, &resp)
	return resp.PlayerToken, err
}

// GetRoom returns the public description of a room.
func (c *Client) GetRoom(ctx context.Context, code string) (protocol.RoomResponse, error) {
	var resp protocol.RoomResponse
	err := c.call(ctx, protocol.TypeGetRoom, protocol.RoomRequest{RoomCode: normalizeCode(code)}, &resp)
	return resp, err
}

// SetPlayerInfo sets the display name of seat.
func (c *Client) SetPlayerInfo(ctx context.Context, code string, seat int, token, name string) error {
	return c.call(ctx, protocol.TypeSetPlayerInfo, protocol.SetPlayerInfoRequest{
		RoomCode: normalizeCode(code),
		Seat:     seat,
		Token:    token,
		Name:     name,
	}, nil)
}

// StartGame racks the balls. Besides the usual not_found, permission_denied
// and conflict errors it fails with unavailable while seat 1 is still empty.
func (c *Client) StartGame(ctx context.Context, code string, seat int, token string) error {
	return c.call(ctx, protocol.TypeStartGame, protocol.StartGameRequest{
		RoomCode: normalizeCode(code),
		Seat:     seat,
		Token:    token,
	}, nil)
}

// GetGameState returns the current table, scores and turn owner.
func (c *Client) GetGameState(ctx context.Context, code string) (protocol.GameState, error) {
	var resp protocol.GameState
	err := c.call(ctx, protocol.TypeGetGameState, protocol.RoomRequest{RoomCode: normalizeCode(code)}, &resp)
	return resp, err
}

// PostTurn submits the ball table after seat's shot.
func (c *Client) PostTurn(ctx context.Context, code string, seat int, token string, balls []protocol.Ball) (protocol.PostTurnResponse, error) {
	var resp protocol.PostTurnResponse
	err := c.call(ctx, protocol.TypePostTurn, protocol.PostTurnRequest{
		RoomCode: normalizeCode(code),
		Seat:     seat,
		Token:    token,
		Balls:    balls,
	}, &resp)
	return resp, err
}

// Shoot fetches the current table, takes pocketed off it and posts the
// result. Include ball 0 in pocketed for a scratch.
func (c *Client) Shoot(ctx context.Context, code string, seat int, token string, pocketed ...int) (protocol.PostTurnResponse, error) {
	state, err := c.GetGameState(ctx, code)
	if err != nil {
		return protocol.PostTurnResponse{}, err
	}
	return c.PostTurn(ctx, code, seat, token, state.Shot(pocketed...))
}

// CheckWinState reports whether the match is decided.
func (c *Client) CheckWinState(ctx context.Context, code string) (protocol.WinStateResponse, error) {
	var resp protocol.WinStateResponse
	err := c.call(ctx, protocol.TypeCheckWinState, protocol.RoomRequest{RoomCode: normalizeCode(code)}, &resp)
	return resp, err
}

// GetPreviousTurn returns the most recent applied turn.
func (c *Client) GetPreviousTurn(ctx context.Context, code string) (protocol.Turn, error) {
	var resp protocol.Turn
	err := c.call(ctx, protocol.TypeGetPreviousTurn, protocol.RoomRequest{RoomCode: normalizeCode(code)}, &resp)
	return resp, err
}

// normalizeCode upper-cases codes typed by hand.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
