package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yatzy-lite/apps/server/internal/config"
)

const (
	defaultRecentLimit = 200
	maxPageLimit       = 100
)

var ErrNotFound = errors.New("not found")

// Service stores finished games. Games in progress are never written.
type Service interface {
	Close() error
	RecordGame(ctx context.Context, rec GameRecord) error
	ListRecent(ctx context.Context, userID uint64, limit int) ([]GameSummary, error)
	GetGameEvents(ctx context.Context, userID uint64, gameID string) ([]EventItem, error)
	TopScores(ctx context.Context, limit int) ([]GameSummary, error)
}

// GameRecord is written once, when a game reaches game over.
type GameRecord struct {
	GameID     string
	UserID     uint64
	Username   string
	PlayedAt   time.Time
	GrandTotal int
	Summary    map[string]any
	Events     []EventItem
}

type GameSummary struct {
	GameID     string         `json:"game_id"`
	UserID     uint64         `json:"user_id"`
	Username   string         `json:"username,omitempty"`
	PlayedAt   time.Time      `json:"played_at"`
	GrandTotal int            `json:"grand_total"`
	Summary    map[string]any `json:"summary"`
}

type EventItem struct {
	Seq         uint64 `json:"seq"`
	EventType   string `json:"event_type"`
	EnvelopeB64 string `json:"envelope_b64"`
	ServerTsMs  *int64 `json:"server_ts_ms,omitempty"`
}

type noopService struct{}

func (n *noopService) Close() error { return nil }

func (n *noopService) RecordGame(_ context.Context, _ GameRecord) error { return nil }

func (n *noopService) ListRecent(_ context.Context, _ uint64, _ int) ([]GameSummary, error) {
	return []GameSummary{}, nil
}

func (n *noopService) GetGameEvents(_ context.Context, _ uint64, _ string) ([]EventItem, error) {
	return nil, ErrNotFound
}

func (n *noopService) TopScores(_ context.Context, _ int) ([]GameSummary, error) {
	return []GameSummary{}, nil
}

// NewService opens the ledger selected by cfg.Ledger.Mode.
func NewService(cfg config.Config) (Service, error) {
	switch cfg.Ledger.Mode {
	case config.LedgerModeMemory:
		return &noopService{}, nil
	case config.LedgerModeSQLite:
		return NewSQLiteService(cfg.Ledger.SQLitePath, cfg.Ledger.RecentLimit)
	case config.LedgerModePostgres:
		return NewPostgresService(cfg.Ledger.PostgresDSN, cfg.Ledger.RecentLimit)
	default:
		return nil, fmt.Errorf("unsupported ledger mode %q", cfg.Ledger.Mode)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
