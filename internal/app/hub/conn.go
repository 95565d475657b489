/*
Package hub contains the live coordination core.

This file defines the connection type, the gateway's view of one WebSocket.
A connection pumps frames in and out; everything it learns is posted to the
hub loop, and everything it sends was decided there. The associated User,
not the connection, is the source of truth for presence.
*/
package hub

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"syncroom/internal/app/room"
	"syncroom/internal/pkg/logx"
	"syncroom/internal/protocol"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong before considering the peer gone.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a client frame.
	maxMessageSize = 16384

	// sendChannelBuffer is the per-connection outbound queue depth.
	sendChannelBuffer = 256
)

// Per-connection token buckets for the rate limited message types.
var (
	chatLimit     = rate.Every(500 * time.Millisecond)
	statsLimit    = rate.Limit(2)
	struggleLimit = rate.Every(10 * time.Second)
)

// connection wraps one live WebSocket bound to a user.
type connection struct {
	hub  *Hub
	ws   *websocket.Conn
	user *room.User

	// topic is the room topic this connection subscribes to, captured at
	// bind time so detach works even after the user left the room.
	topic string

	send chan []byte

	// serverClosed marks a close initiated by the server (kick, destroy,
	// superseded reconnect); the close event handler then skips departure
	// handling because state was already updated when the close was decided.
	serverClosed atomic.Bool

	// closeCode is the application close code received from the client,
	// recorded by the read pump before it posts the close event.
	closeCode int

	detachOnce sync.Once

	chatLimiter     *rate.Limiter
	statsLimiter    *rate.Limiter
	struggleLimiter *rate.Limiter

	logger zerolog.Logger
}

// newConnection binds an upgraded WebSocket to its authenticated user.
func newConnection(h *Hub, ws *websocket.Conn, u *room.User) *connection {
	connLogger := logx.Logger().With().
		Str("user_id", u.ID).
		Str("room_slug", u.Room.Slug).
		Logger()

	return &connection{
		hub:             h,
		ws:              ws,
		user:            u,
		topic:           u.Room.Topic,
		send:            make(chan []byte, sendChannelBuffer),
		closeCode:       websocket.CloseAbnormalClosure,
		chatLimiter:     rate.NewLimiter(chatLimit, 5),
		statsLimiter:    rate.NewLimiter(statsLimit, 4),
		struggleLimiter: rate.NewLimiter(struggleLimit, 1),
		logger:          connLogger,
	}
}

// Send queues a payload for delivery, reporting whether it was accepted.
// A full queue drops the payload; the peer is too slow to keep.
func (c *connection) Send(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Connection send queue full, dropping message.")
		return false
	}
}

// CloseWith terminates the connection with an application close code. The
// read pump's subsequent close event is suppressed via serverClosed.
// Safe to call from the hub loop: WriteControl may run concurrently with the
// write pump.
func (c *connection) CloseWith(code int, reason string) {
	c.serverClosed.Store(true)

	if c.ws == nil {
		return
	}

	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.logger.Warn().Err(err).Int("close_code", code).Msg("Failed to write close frame.")
	}

	if err := c.ws.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Connection close error.")
	}
}

// readPump reads frames off the socket and posts them to the hub loop.
// It exits on any read error, posting the connection-close event with
// whatever close code the peer supplied.
func (c *connection) readPump() {
	defer func() {
		code := c.closeCode
		c.hub.post(func() { c.hub.handleClose(c, code) })

		if err := c.ws.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in read pump.")
		}
	}()

	c.ws.SetReadLimit(maxMessageSize)

	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline.")
		return
	}

	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		frameType, data, err := c.ws.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				c.closeCode = closeErr.Code
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended.")
			}
			return
		}

		binary := frameType == websocket.BinaryMessage
		c.hub.post(func() { c.hub.dispatch(c, data, binary) })
	}
}

// writePump drains the send queue onto the socket and keeps the heartbeat
// alive. A closed send channel makes it write a close frame and exit.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.ws.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in write pump.")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline.")
				return
			}

			if !ok {
				if err := c.ws.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message.")
				}
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing message.")
				return
			}

		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}

			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping.")
				return
			}
		}
	}
}

// reply sends a server message correlated to the envelope that caused it.
func (c *connection) reply(env *protocol.Envelope, msgType string, body any) {
	c.Send(protocol.Serialize(msgType, body, env.ID))
}

// sendError sends a typed wire error, correlated when an id is known.
func (c *connection) sendError(replyTo *int64, wireErr protocol.WireError) {
	c.Send(protocol.Serialize(protocol.TypeError, wireErr, replyTo))
}

// allow checks a token bucket, answering a ratelimit error with a backoff
// hint when the bucket is empty. Reports whether the action may proceed.
func (c *connection) allow(lim *rate.Limiter, env *protocol.Envelope) bool {
	res := lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()

		c.sendError(env.ID, protocol.WireError{
			Cause:          env.Type,
			Type:           protocol.ErrRateLimit,
			Message:        "Slow down.",
			TimeoutSeconds: int(math.Ceil(delay.Seconds())),
		})
		return false
	}

	return true
}
