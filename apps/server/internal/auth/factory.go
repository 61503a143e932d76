package auth

import (
	"fmt"

	"yatzy-lite/apps/server/internal/config"
)

// NewService builds the account store selected by cfg.Auth.Mode.
func NewService(cfg config.Config) (Service, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMemory:
		return NewManager(cfg.Auth.SessionTTL), nil
	case config.AuthModeSQLite:
		return NewSQLiteManager(cfg.Auth.SQLitePath, cfg.Auth.SessionTTL)
	case config.AuthModePostgres:
		return NewPostgresManager(cfg.Auth.PostgresDSN, cfg.Auth.SessionTTL)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}
