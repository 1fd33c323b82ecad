// Package stream fans published roster updates out to websocket
// subscribers (the draft panel keeps a live view this way instead of
// polling /api/users).
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/matchlobby/voicebridge/internal/reconcile"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func (s *subscriber) trySend(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("connection closed")
	}
	select {
	case s.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *subscriber) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.mu.Unlock()
}

// Hub tracks live subscribers and implements reconcile.Publisher so
// it can sit behind the same fanout as the webhook sink.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Publish serializes the update once and offers it to every
// subscriber. A slow subscriber drops the frame; it never delays the
// reconciler.
func (h *Hub) Publish(ctx context.Context, u reconcile.Update) error {
	frame, err := json.Marshal(u)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		if err := s.trySend(frame); err != nil {
			log.Debug().Str("module", "stream").Msg("frame dropped for slow subscriber")
		}
	}
	return nil
}

func (h *Hub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// HandleStream upgrades the request and keeps the subscriber until
// either side goes away.
func (h *Hub) HandleStream(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "stream").Msg("ws upgrade")
		return
	}

	s := &subscriber{conn: ws, send: make(chan []byte, 32)}
	h.add(s)
	log.Info().Str("module", "stream").Int("subscribers", h.subscriberCount()).Msg("subscriber joined")

	go h.writePump(ctx, s)
	go h.readPump(s)
}

func (h *Hub) writePump(ctx context.Context, s *subscriber) {
	defer h.remove(s)
	for {
		select {
		case frame, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readPump discards inbound frames; its job is noticing the close.
func (h *Hub) readPump(s *subscriber) {
	defer h.remove(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
