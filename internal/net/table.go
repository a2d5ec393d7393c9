package net

// SessionTable tracks every live session by id.
// Game loop goroutine only — no locks needed.
type SessionTable struct {
	sessions map[uint64]*Session
}

func NewSessionTable() *SessionTable {
	return &SessionTable{sessions: make(map[uint64]*Session)}
}

func (t *SessionTable) Add(s *Session) {
	t.sessions[s.ID] = s
}

func (t *SessionTable) Remove(id uint64) {
	delete(t.sessions, id)
}

func (t *SessionTable) Get(id uint64) *Session {
	return t.sessions[id]
}

func (t *SessionTable) Len() int {
	return len(t.sessions)
}

// Each visits every session.
func (t *SessionTable) Each(fn func(*Session)) {
	for _, s := range t.sessions {
		fn(s)
	}
}

// Reap removes sessions that have been closed.
func (t *SessionTable) Reap() {
	for id, s := range t.sessions {
		if s.IsClosed() {
			delete(t.sessions, id)
		}
	}
}
