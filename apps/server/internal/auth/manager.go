package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const storeTimeout = 5 * time.Second

// Manager implements Service on top of a Store: it owns credential checks,
// password hashing and token issuing, the store owns persistence.
type Manager struct {
	store      Store
	sessionTTL time.Duration
	now        func() time.Time
}

// NewManager returns a Manager over an in-memory store. Account IDs restart
// with the process, so it must not be paired with a persistent ledger.
func NewManager(sessionTTL time.Duration) *Manager {
	return NewManagerWithStore(newMemoryStore(), sessionTTL)
}

func NewManagerWithStore(store Store, sessionTTL time.Duration) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Manager{
		store:      store,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (m *Manager) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// Register creates a new account and returns an authenticated session token.
func (m *Manager) Register(username, password string) (accountID uint64, sessionToken string, err error) {
	if err = validateUsername(username); err != nil {
		return 0, "", err
	}
	if err = validatePassword(password); err != nil {
		return 0, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	ctx, cancel := m.ctx()
	defer cancel()
	now := m.now()
	sessionToken = mustToken()
	acc, err := m.store.CreateAccount(ctx, Account{
		Username:     normalizeUsername(username),
		PasswordHash: hash,
	}, sessionToken, now.Add(m.sessionTTL), now)
	if err != nil {
		return 0, "", err
	}
	return acc.ID, sessionToken, nil
}

// Login validates credentials and returns a fresh session.
func (m *Manager) Login(username, password string) (accountID uint64, sessionToken string, err error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	ctx, cancel := m.ctx()
	defer cancel()
	acc, err := m.store.AccountByUsername(ctx, normalized)
	if errors.Is(err, errNotFound) {
		return 0, "", ErrInvalidCredentials
	}
	if err != nil {
		return 0, "", err
	}
	if acc.Guest || len(acc.PasswordHash) == 0 {
		return 0, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}

	now := m.now()
	sessionToken = mustToken()
	if err := m.store.StartSession(ctx, acc.ID, sessionToken, now.Add(m.sessionTTL), now); err != nil {
		return 0, "", err
	}
	return acc.ID, sessionToken, nil
}

// ResolveSession validates token and slides its expiry.
func (m *Manager) ResolveSession(token string) (accountID uint64, username string, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, "", false
	}
	ctx, cancel := m.ctx()
	defer cancel()
	now := m.now()
	acc, err := m.store.ResolveSession(ctx, token, now, now.Add(m.sessionTTL))
	if err != nil {
		return 0, "", false
	}
	return acc.ID, acc.Username, true
}

func (m *Manager) Logout(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	ctx, cancel := m.ctx()
	defer cancel()
	_ = m.store.RevokeSession(ctx, token, m.now())
}

// ResolveOrCreateAccount returns the account bound to token if it is live,
// otherwise a new guest account with a fresh token. accountID is 0 when the
// store failed.
func (m *Manager) ResolveOrCreateAccount(token string) (accountID uint64, sessionToken string, reused bool) {
	if id, _, ok := m.ResolveSession(token); ok {
		return id, strings.TrimSpace(token), true
	}

	ctx, cancel := m.ctx()
	defer cancel()
	now := m.now()
	sessionToken = mustToken()
	acc, err := m.store.CreateAccount(ctx, Account{Guest: true}, sessionToken, now.Add(m.sessionTTL), now)
	if err != nil {
		return 0, "", false
	}
	return acc.ID, sessionToken, false
}

// PruneExpired drops sessions that are expired (or revoked) at now.
func (m *Manager) PruneExpired(now time.Time) int {
	ctx, cancel := m.ctx()
	defer cancel()
	n, err := m.store.PruneSessions(ctx, now)
	if err != nil {
		return 0
	}
	return n
}

func (m *Manager) Close() error {
	return m.store.Close()
}
