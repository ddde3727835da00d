package broker

import (
	"context"
	"sync"

	"cuahang/cuahang/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultQueueSize = 64

// Session is one live client connection of a user. Its writer drains Send().
type Session struct {
	ID     string
	UserID int
	send   chan []byte
	closed bool
}

func (s *Session) Send() <-chan []byte {
	return s.send
}

// Hub is the in-process registry of sessions keyed by user id.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[int]map[string]*Session
	queueSize int
}

func NewHub() *Hub {
	return &Hub{
		sessions:  make(map[int]map[string]*Session),
		queueSize: defaultQueueSize,
	}
}

func (h *Hub) Register(userID int) *Session {
	s := &Session{
		ID:     uuid.New().String(),
		UserID: userID,
		send:   make(chan []byte, h.queueSize),
	}
	h.mu.Lock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[string]*Session)
	}
	h.sessions[userID][s.ID] = s
	h.mu.Unlock()
	logging.AppLogger.Info("chat session registered", zap.Int("user_id", userID), zap.String("session_id", s.ID))
	return s
}

// Unregister removes the session and closes its queue. Safe to call twice.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
	if userSessions, ok := h.sessions[s.UserID]; ok {
		delete(userSessions, s.ID)
		if len(userSessions) == 0 {
			delete(h.sessions, s.UserID)
		}
	}
	logging.AppLogger.Info("chat session unregistered", zap.Int("user_id", s.UserID), zap.String("session_id", s.ID))
}

// Online reports how many sessions the user currently holds.
func (h *Hub) Online(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) Deliver(ctx context.Context, userID int, channel string, payload any) error {
	frame, err := encodeEnvelope(channel, payload)
	if err != nil {
		return err
	}
	h.DeliverRaw(userID, frame)
	return nil
}

// DeliverRaw queues an encoded frame on every session of the user and
// returns how many sessions accepted it.
func (h *Hub) DeliverRaw(userID int, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, s := range h.sessions[userID] {
		select {
		case s.send <- frame:
			delivered++
		default:
			logging.AppLogger.Warn("chat session queue full, dropping frame",
				zap.Int("user_id", userID), zap.String("session_id", s.ID))
		}
	}
	return delivered
}
