package lobby

import (
	"sort"
	"sync"
	"time"

	"yatzy-lite/apps/server/internal/ledger"
	"yatzy-lite/apps/server/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Lobby owns every live session; each user has at most one.
type Lobby struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	byUser   map[uint64]string

	ledger ledger.Service
	opts   session.Options
}

func New(ledgerService ledger.Service, opts session.Options) *Lobby {
	return &Lobby{
		sessions: make(map[string]*session.Session),
		byUser:   make(map[uint64]string),
		ledger:   ledgerService,
		opts:     opts,
	}
}

// Start returns the user's open session, or creates one. resumed reports
// whether an existing session was reused.
func (l *Lobby) Start(
	userID uint64,
	username string,
	sendFn func(userID uint64, data []byte),
) (s *session.Session, resumed bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.byUser[userID]; ok {
		if existing := l.sessions[id]; existing != nil && !existing.IsClosed() {
			log.Debug().Str("session", id).Uint64("user", userID).Msg("resuming session")
			return existing, true, nil
		}
		delete(l.sessions, id)
		delete(l.byUser, userID)
	}

	id := uuid.NewString()
	s, err = session.New(id, userID, username, sendFn, l.ledger, l.opts)
	if err != nil {
		return nil, false, err
	}
	l.sessions[id] = s
	l.byUser[userID] = id

	log.Info().Str("session", id).Uint64("user", userID).Int("sessions", len(l.sessions)).Msg("session started")
	return s, false, nil
}

// Get returns a session by ID
func (l *Lobby) Get(sessionID string) *session.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessions[sessionID]
}

// List returns all session IDs, sorted.
func (l *Lobby) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReapIdle stops and forgets sessions idle for at least ttl.
func (l *Lobby) ReapIdle(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for id, s := range l.sessions {
		if !s.IsIdleFor(ttl) {
			continue
		}
		s.Stop()
		delete(l.sessions, id)
		if l.byUser[s.UserID] == id {
			delete(l.byUser, s.UserID)
		}
		n++
	}
	if n > 0 {
		log.Info().Int("reaped", n).Int("sessions", len(l.sessions)).Msg("reaped idle sessions")
	}
	return n
}

// Close stops every session.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, s := range l.sessions {
		s.Stop()
		delete(l.sessions, id)
	}
	l.byUser = make(map[uint64]string)
}
