package auth

import (
	"errors"
	"net/http"

	"yatzy-lite/apps/server/internal/httpjson"

	"github.com/go-chi/chi/v5"
)

// HTTPHandler serves /api/auth. Tokens it issues are the same tokens the
// websocket accepts as ?token=.
type HTTPHandler struct {
	accounts Service
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID       uint64 `json:"user_id"`
	SessionToken string `json:"session_token"`
}

type meResponse struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Guest    bool   `json:"guest"`
}

func NewHTTPHandler(accounts Service) *HTTPHandler {
	return &HTTPHandler{accounts: accounts}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.withCredentials(h.accounts.Register))
		r.Post("/login", h.withCredentials(h.accounts.Login))
		r.Post("/guest", h.handleGuest)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

// credentialStatus maps account errors to HTTP statuses; anything else is a 500.
var credentialStatus = []struct {
	err    error
	status int
}{
	{ErrInvalidUsername, http.StatusBadRequest},
	{ErrInvalidPassword, http.StatusBadRequest},
	{ErrUsernameTaken, http.StatusConflict},
	{ErrInvalidCredentials, http.StatusUnauthorized},
}

func (h *HTTPHandler) withCredentials(issue func(username, password string) (uint64, string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		userID, token, err := issue(req.Username, req.Password)
		if err != nil {
			for _, m := range credentialStatus {
				if errors.Is(err, m.err) {
					httpjson.Error(w, m.status, err.Error())
					return
				}
			}
			httpjson.Error(w, http.StatusInternalServerError, "account store unavailable")
			return
		}
		httpjson.Write(w, http.StatusOK, sessionResponse{UserID: userID, SessionToken: token})
	}
}

// handleGuest hands out a guest token so a client can call the ledger API
// before it opens a game socket.
func (h *HTTPHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	userID, token, _ := h.accounts.ResolveOrCreateAccount(BearerToken(r.Header.Get("Authorization")))
	if userID == 0 {
		httpjson.Error(w, http.StatusServiceUnavailable, "account store unavailable")
		return
	}
	httpjson.Write(w, http.StatusOK, sessionResponse{UserID: userID, SessionToken: token})
}

func (h *HTTPHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		httpjson.Error(w, http.StatusUnauthorized, "missing session token")
		return
	}
	h.accounts.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, username, ok := h.accounts.ResolveSession(BearerToken(r.Header.Get("Authorization")))
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	httpjson.Write(w, http.StatusOK, meResponse{
		UserID:   userID,
		Username: username,
		Guest:    IsGuest(username),
	})
}
