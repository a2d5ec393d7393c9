package net

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP connections to websocket sessions. Decoded messages
// from every session land on a single shared inbox; new and dead sessions are
// communicated to the game loop via channels.
type Server struct {
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	inbox    chan Inbound
	newConns chan *Session
	deadCh   chan *Session

	outSize      int
	readLimit    int64
	writeTimeout time.Duration

	log *zap.Logger
}

func NewServer(bindAddr string, inboxSize, outSize int, readLimit int64, writeTimeout time.Duration, log *zap.Logger) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Game clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		inbox:        make(chan Inbound, inboxSize),
		newConns:     make(chan *Session, 64),
		deadCh:       make(chan *Session, 64),
		outSize:      outSize,
		readLimit:    readLimit,
		writeTimeout: writeTimeout,
		log:          log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Addr: bindAddr, Handler: mux}
	return s
}

// ListenAndServe blocks until the server shuts down.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.httpSrv.Addr))
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	if s.readLimit > 0 {
		conn.SetReadLimit(s.readLimit)
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, s.inbox, s.outSize, s.writeTimeout, s.log)
	sess.OnClose(func(dead *Session) {
		select {
		case s.deadCh <- dead:
		default:
		}
	})

	select {
	case s.newConns <- sess:
		sess.Start()
		s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
	default:
		s.log.Warn("connection queue full, rejecting client")
		conn.Close()
	}
}

// Inbox returns the shared channel of decoded inbound messages.
func (s *Server) Inbox() <-chan Inbound {
	return s.inbox
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// DeadSessions returns the channel of closed sessions.
func (s *Server) DeadSessions() <-chan *Session {
	return s.deadCh
}

// Shutdown stops accepting connections and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
