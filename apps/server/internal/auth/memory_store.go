package auth

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	accountID uint64
	expiresAt time.Time
}

type memoryStore struct {
	mu       sync.Mutex
	nextID   uint64
	accounts map[uint64]Account
	byName   map[string]uint64
	sessions map[string]memorySession
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID:   100000,
		accounts: make(map[uint64]Account),
		byName:   make(map[string]uint64),
		sessions: make(map[string]memorySession),
	}
}

func (s *memoryStore) CreateAccount(_ context.Context, acc Account, token string, expiresAt, _ time.Time) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !acc.Guest {
		if _, taken := s.byName[acc.Username]; taken {
			return Account{}, ErrUsernameTaken
		}
	}
	s.nextID++
	acc.ID = s.nextID
	if acc.Guest {
		acc.Username = guestName(acc.ID)
	}
	s.accounts[acc.ID] = acc
	s.byName[acc.Username] = acc.ID
	s.sessions[token] = memorySession{accountID: acc.ID, expiresAt: expiresAt}
	return acc, nil
}

func (s *memoryStore) AccountByUsername(_ context.Context, username string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	if !ok {
		return Account{}, errNotFound
	}
	return s.accounts[id], nil
}

func (s *memoryStore) StartSession(_ context.Context, accountID uint64, token string, expiresAt, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return errNotFound
	}
	s.sessions[token] = memorySession{accountID: accountID, expiresAt: expiresAt}
	return nil
}

func (s *memoryStore) ResolveSession(_ context.Context, token string, now, expiresAt time.Time) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Account{}, errNotFound
	}
	if !now.Before(sess.expiresAt) {
		delete(s.sessions, token)
		return Account{}, errNotFound
	}
	sess.expiresAt = expiresAt
	s.sessions[token] = sess
	return s.accounts[sess.accountID], nil
}

func (s *memoryStore) RevokeSession(_ context.Context, token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *memoryStore) PruneSessions(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) Close() error { return nil }
