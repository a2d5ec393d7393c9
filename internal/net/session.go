package net

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn *websocket.Conn

	// PlayerID is set by the join handler and read by the game loop only.
	PlayerID  string
	LobbyCode string

	// LastMsgAt backs per-type rate limiting. Game loop goroutine only.
	LastMsgAt map[string]time.Time

	inbox    chan<- Inbound // shared with every session, drained by the game loop
	OutQueue chan []byte    // writer goroutine reads from here

	IP string

	outBuf [][]byte // buffered messages, flushed at the output phase (game loop only)

	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func(*Session)

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, inbox chan<- Inbound, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		conn:         conn,
		inbox:        inbox,
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a message for sending. Nothing is written to the socket until
// FlushOutput runs at the output phase.
// Called only from the game loop goroutine — no lock needed on outBuf.
func (s *Session) Send(data []byte) {
	if data == nil || s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// SendNow encodes and buffers a typed message in one call.
func (s *Session) SendNow(msgType string, payload any) {
	s.Send(Encode(msgType, payload))
}

// PendingOutput reports how many messages are buffered but not yet flushed.
// Called only from the game loop goroutine.
func (s *Session) PendingOutput() int {
	return len(s.outBuf)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("out queue full, dropping slow consumer")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// OnClose registers a callback fired exactly once when the session dies.
// Must be set before Start.
func (s *Session) OnClose(fn func(*Session)) {
	s.onClose = fn
}

// Close shuts the session down. Safe to call from any goroutine, repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop reads websocket frames, decodes the envelope, and pushes the
// message onto the shared inbox for the game loop to consume. Malformed
// frames are logged and skipped rather than killing the connection.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.log.Debug("malformed envelope", zap.Error(err))
			continue
		}
		if env.Type == "" {
			continue
		}

		// Block until the inbox has space or the session closes. The
		// readLoop goroutine is per-session, so this only stalls one client.
		select {
		case s.inbox <- Inbound{Session: s, Env: env}:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop drains OutQueue and writes each message as a text frame.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOne(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOne(data []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
