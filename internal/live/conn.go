package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/parley/internal/message"
)

// Conn is the subset of *websocket.Conn the orchestrator uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// sender serializes writes on a connection. Write failures are logged and
// swallowed: the read loop notices the broken connection on its own.
type sender struct {
	mu   sync.Mutex
	conn Conn
	log  *slog.Logger
}

func (s *sender) text(msg string) {
	s.frame(message.ServerFrame{Type: message.ServerFrameText, Data: msg})
}

func (s *sender) error(msg string) {
	s.frame(message.ServerFrame{Type: message.ServerFrameError, Data: msg})
}

func (s *sender) frame(f message.ServerFrame) {
	b, err := json.Marshal(f)
	if err != nil {
		s.log.Error("encoding live frame", "error", err)
		return
	}
	s.write(websocket.TextMessage, b)
}

func (s *sender) binary(data []byte) {
	s.write(websocket.BinaryMessage, data)
}

func (s *sender) write(messageType int, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.log.Warn("live write failed", "message_type", messageType, "bytes", len(data), "error", err)
	}
}
