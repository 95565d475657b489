/*
Package hub contains the live coordination core: the serialized event loop
that owns all room, user, and session state, the WebSocket connection
gateway, the message dispatcher with its authorization guards, and the
reaper.

Every mutation of coordination state happens on one goroutine, the hub's run
loop. Connection pumps and HTTP handlers never touch state directly; they
post closures into the loop. The loop also drives the reaper ticker, so
event ordering is exactly the arrival order of network events and timer
ticks.
*/
package hub

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"syncroom/internal/app/media"
	"syncroom/internal/app/room"
	"syncroom/internal/app/session"
	"syncroom/internal/configs"
	"syncroom/internal/pkg/logx"
	"syncroom/internal/protocol"
)

const opsChannelBuffer = 1024

// Hub owns the coordination state and serializes all access to it.
type Hub struct {
	registry *room.Registry
	sessions *session.Directory
	media    *media.Service

	reconnectGrace time.Duration
	reaperInterval time.Duration

	// ops carries closures to run on the hub loop, in arrival order.
	ops chan func()

	// subs maps a room topic to the connections subscribed to it.
	subs map[string]map[*connection]struct{}

	validate *validator.Validate

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// New constructs a Hub and starts its run loop.
func New(registry *room.Registry, sessions *session.Directory, mediaSvc *media.Service, cfg *configs.AppConfig) *Hub {
	h := &Hub{
		registry:       registry,
		sessions:       sessions,
		media:          mediaSvc,
		reconnectGrace: cfg.ReconnectGrace,
		reaperInterval: cfg.ReaperInterval,
		ops:            make(chan func(), opsChannelBuffer),
		subs:           make(map[string]map[*connection]struct{}),
		validate:       validator.New(),
		stop:           make(chan struct{}),
		logger:         logx.Logger().With().Str("component", "Hub").Logger(),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// run is the single loop that owns all coordination state.
func (h *Hub) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.reaperInterval)
	defer ticker.Stop()

	h.logger.Info().
		Dur("reaper_interval", h.reaperInterval).
		Dur("reconnect_grace", h.reconnectGrace).
		Msg("Hub loop started.")

	for {
		select {
		case fn := <-h.ops:
			fn()

		case <-ticker.C:
			h.reap(time.Now())

		case <-h.stop:
			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

// post queues a closure for execution on the hub loop. It blocks when the
// queue is full; events must not be dropped, only delayed.
func (h *Hub) post(fn func()) {
	select {
	case h.ops <- fn:
	case <-h.stop:
	}
}

// Do runs a closure on the hub loop and waits for it to finish. HTTP
// handlers use it to get the same single-threaded ordering connection events
// have.
func (h *Hub) Do(fn func()) {
	done := make(chan struct{})

	h.post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
	case <-h.stop:
	}
}

// Shutdown terminates the hub loop, closing every live connection first so
// clients see a clean room-destroyed signal instead of a dead socket.
func (h *Hub) Shutdown() {
	h.Do(func() {
		for _, conns := range h.subs {
			for c := range conns {
				c.CloseWith(protocol.CloseRoomDestroyed, protocol.ReasonRoomDestroyed)
			}
		}
	})

	h.stopOnce.Do(func() { close(h.stop) })
	h.wg.Wait()

	h.logger.Info().Msg("Hub shutdown complete.")
}

// subscribe adds a connection to a topic. Loop-confined.
func (h *Hub) subscribe(topic string, c *connection) {
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*connection]struct{})
		h.subs[topic] = set
	}
	set[c] = struct{}{}
}

// unsubscribe removes a connection from its topic. Loop-confined.
func (h *Hub) unsubscribe(topic string, c *connection) {
	if set, ok := h.subs[topic]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, topic)
		}
	}
}

// publish delivers a payload to every connection subscribed to the topic.
func (h *Hub) publish(topic string, payload []byte) {
	if payload == nil {
		return
	}

	for c := range h.subs[topic] {
		c.Send(payload)
	}
}

// announce broadcasts a server message to everyone in the room.
func (h *Hub) announce(r *room.Room, msgType string, body any) {
	h.publish(r.Topic, protocol.Serialize(msgType, body, nil))
}
