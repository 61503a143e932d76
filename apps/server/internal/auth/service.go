package auth

import "strings"

// Service is the auth/session contract consumed by gateway and HTTP handlers.
type Service interface {
	Register(username, password string) (accountID uint64, sessionToken string, err error)
	Login(username, password string) (accountID uint64, sessionToken string, err error)
	ResolveSession(token string) (accountID uint64, username string, ok bool)
	Logout(token string)
	Close() error

	// ResolveOrCreateAccount resolves token or issues a guest account.
	ResolveOrCreateAccount(token string) (accountID uint64, sessionToken string, reused bool)
}

// BearerToken extracts the token of an "Authorization: Bearer ..." header.
func BearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}
