package scores

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// --- Subscriber ---

type subscriber struct {
	id     string
	conn   *websocket.Conn
	sendCh chan []byte
}

// writePump sends queued frames and keeps the connection alive with pings.
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.sendCh:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards anything the client sends and returns once the
// connection is gone.
func (s *subscriber) readPump(log *zap.Logger) {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("subscriber read error", zap.String("id", s.id), zap.Error(err))
			}
			return
		}
	}
}

// --- Hub ---

// Hub fans leaderboard updates out to websocket subscribers.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*subscriber
	log     *zap.Logger
	metrics *Metrics
}

func NewHub(log *zap.Logger, metrics *Metrics) *Hub {
	return &Hub{
		subs:    make(map[string]*subscriber),
		log:     log,
		metrics: metrics,
	}
}

// Serve upgrades the request and blocks until the subscriber disconnects.
// initial, when non-nil, is the first frame the subscriber receives.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial *protocol.Envelope) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &subscriber{
		id:     uuid.NewString(),
		conn:   conn,
		sendCh: make(chan []byte, sendBuffer),
	}
	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			s.sendCh <- data
		}
	}
	h.add(s)
	go s.writePump()

	s.readPump(h.log)

	h.remove(s.id)
	conn.Close()
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s.id] = s
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.wsClients.Set(float64(n))
	h.log.Debug("subscriber connected", zap.String("id", s.id), zap.Int("subscribers", n))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	s, ok := h.subs[id]
	if ok {
		close(s.sendCh)
		delete(h.subs, id)
	}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.wsClients.Set(float64(n))
}

// Broadcast queues env for every subscriber. Slow subscribers miss frames
// instead of stalling the caller.
func (h *Hub) Broadcast(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		select {
		case s.sendCh <- data:
		default:
			h.log.Warn("subscriber send buffer full, dropping frame", zap.String("id", s.id))
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.subs {
		close(s.sendCh)
		delete(h.subs, id)
	}
	h.metrics.wsClients.Set(0)
}
