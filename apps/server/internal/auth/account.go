package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	tokenBytes        = 32
	guestPrefix       = "guest_"
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// errNotFound is returned by stores for unknown accounts and for
	// sessions that are unknown, expired or revoked.
	errNotFound = errors.New("not found")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

// Account is a player identity. Ledger rows are keyed by ID, so a store must
// never hand out the same ID twice, across restarts included.
type Account struct {
	ID           uint64
	Username     string
	PasswordHash []byte
	Guest        bool
}

// Store persists accounts and bearer sessions for a Manager.
type Store interface {
	// CreateAccount stores acc together with its first session and returns it
	// with the assigned ID. Guests are renamed guest_<id>. A username clash
	// yields ErrUsernameTaken.
	CreateAccount(ctx context.Context, acc Account, token string, expiresAt, now time.Time) (Account, error)
	AccountByUsername(ctx context.Context, username string) (Account, error)
	// StartSession issues token for an existing account and stamps its login.
	StartSession(ctx context.Context, accountID uint64, token string, expiresAt, now time.Time) error
	// ResolveSession returns the owner of a live token and moves its expiry to
	// expiresAt.
	ResolveSession(ctx context.Context, token string, now, expiresAt time.Time) (Account, error)
	RevokeSession(ctx context.Context, token string, now time.Time) error
	PruneSessions(ctx context.Context, now time.Time) (int, error)
	Close() error
}

// IsGuest reports whether username belongs to an auto-created guest account.
func IsGuest(username string) bool {
	return strings.HasPrefix(username, guestPrefix)
}

func guestName(id uint64) string {
	return fmt.Sprintf("%s%d", guestPrefix, id)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if !usernamePattern.MatchString(trimmed) {
		return ErrInvalidUsername
	}
	// guest_ names are reserved so guest renames can never clash.
	if IsGuest(normalizeUsername(trimmed)) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
