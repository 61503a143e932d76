package ledger

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yatzy-lite/apps/server/internal/auth"
	"yatzy-lite/apps/server/internal/httpjson"

	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	auth   auth.Service
	ledger Service
}

func NewHTTPHandler(authService auth.Service, ledgerService Service) *HTTPHandler {
	return &HTTPHandler{
		auth:   authService,
		ledger: ledgerService,
	}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/ledger", func(r chi.Router) {
		r.Get("/recent", h.handleRecent)
		r.Get("/games/{gameID}", h.handleGetGame)
		r.Get("/top", h.handleTop)
	})
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, userID, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "query recent games failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUserID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	gameID := strings.TrimSpace(chi.URLParam(r, "gameID"))
	if gameID == "" {
		httpjson.Error(w, http.StatusBadRequest, "missing game id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	events, err := h.ledger.GetGameEvents(ctx, userID, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "game not found")
			return
		}
		httpjson.Error(w, http.StatusInternalServerError, "query game events failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"game_id": gameID,
		"events":  events,
	})
}

func (h *HTTPHandler) handleTop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.TopScores(ctx, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "query top scores failed")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) resolveUserID(r *http.Request) (uint64, bool) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return 0, false
	}
	userID, _, ok := h.auth.ResolveSession(token)
	return userID, ok
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 20
	}
	return clampLimit(n)
}
