package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"yatzy-lite/apps/server/internal/sqldb"
)

// sqlStore holds the queries shared by the SQLite and PostgreSQL ledgers.
type sqlStore struct {
	db          *sqldb.DB
	recentLimit int
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) RecordGame(ctx context.Context, rec GameRecord) error {
	if strings.TrimSpace(rec.GameID) == "" {
		return fmt.Errorf("record game: empty game id")
	}
	summary := rec.Summary
	if summary == nil {
		summary = map[string]any{}
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("record game %s: marshal summary: %w", rec.GameID, err)
	}
	playedAt := rec.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
INSERT INTO ledger_games (game_id, user_id, username, played_at_ms, grand_total, summary_json, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO NOTHING
`), rec.GameID, int64(rec.UserID), rec.Username, playedAt.UTC().UnixMilli(), rec.GrandTotal,
		string(summaryJSON), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("record game %s: %w", rec.GameID, err)
	}

	insertEvent := s.db.Rebind(`
INSERT INTO ledger_game_events (game_id, seq, event_type, envelope_b64, server_ts_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (game_id, seq) DO NOTHING
`)
	for _, e := range rec.Events {
		if _, err := tx.ExecContext(ctx, insertEvent, rec.GameID, int64(e.Seq), e.EventType, e.EnvelopeB64, nullableInt64Ptr(e.ServerTsMs)); err != nil {
			return fmt.Errorf("record game %s seq %d: %w", rec.GameID, e.Seq, err)
		}
	}

	// Keep only the newest recentLimit games per user.
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
DELETE FROM ledger_games
WHERE user_id = ?
  AND game_id NOT IN (
    SELECT game_id FROM ledger_games
    WHERE user_id = ?
    ORDER BY played_at_ms DESC, game_id DESC
    LIMIT ?
  )
`), int64(rec.UserID), int64(rec.UserID), s.recentLimit); err != nil {
		return fmt.Errorf("prune games for user %d: %w", rec.UserID, err)
	}

	return tx.Commit()
}

func (s *sqlStore) ListRecent(ctx context.Context, userID uint64, limit int) ([]GameSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT game_id, user_id, username, played_at_ms, grand_total, summary_json
FROM ledger_games
WHERE user_id = ?
ORDER BY played_at_ms DESC, game_id DESC
LIMIT ?
`), int64(userID), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func (s *sqlStore) TopScores(ctx context.Context, limit int) ([]GameSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT game_id, user_id, username, played_at_ms, grand_total, summary_json
FROM ledger_games
ORDER BY grand_total DESC, played_at_ms ASC
LIMIT ?
`), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func (s *sqlStore) GetGameEvents(ctx context.Context, userID uint64, gameID string) ([]EventItem, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT user_id FROM ledger_games WHERE game_id = ?`), gameID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && uint64(owner) != userID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
SELECT seq, event_type, envelope_b64, server_ts_ms
FROM ledger_game_events
WHERE game_id = ?
ORDER BY seq ASC
`), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]EventItem, 0, 64)
	for rows.Next() {
		var (
			item EventItem
			seq  int64
			ts   sql.NullInt64
		)
		if err := rows.Scan(&seq, &item.EventType, &item.EnvelopeB64, &ts); err != nil {
			return nil, err
		}
		item.Seq = uint64(seq)
		if ts.Valid {
			v := ts.Int64
			item.ServerTsMs = &v
		}
		events = append(events, item)
	}
	return events, rows.Err()
}

func scanSummaries(rows *sql.Rows) ([]GameSummary, error) {
	defer rows.Close()
	out := make([]GameSummary, 0, 16)
	for rows.Next() {
		var (
			item        GameSummary
			userID      int64
			playedAtMs  int64
			summaryJSON string
		)
		if err := rows.Scan(&item.GameID, &userID, &item.Username, &playedAtMs, &item.GrandTotal, &summaryJSON); err != nil {
			return nil, err
		}
		item.UserID = uint64(userID)
		item.PlayedAt = time.UnixMilli(playedAtMs).UTC()
		item.Summary = map[string]any{}
		if summaryJSON != "" {
			if err := json.Unmarshal([]byte(summaryJSON), &item.Summary); err != nil {
				return nil, fmt.Errorf("decode summary of %s: %w", item.GameID, err)
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullableInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *sqlStore) migrate(ctx context.Context) error {
	return s.db.Migrate(ctx, ledgerSchema(s.db.BigInt()))
}

// ledgerSchema returns the DDL for both drivers; only the wide integer type differs.
func ledgerSchema(bigint string) []string {
	return []string{
		`
CREATE TABLE IF NOT EXISTS ledger_games (
    game_id TEXT PRIMARY KEY,
    user_id ` + bigint + ` NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    played_at_ms ` + bigint + ` NOT NULL,
    grand_total INTEGER NOT NULL,
    summary_json TEXT NOT NULL DEFAULT '{}',
    created_at_ms ` + bigint + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_games_user_played ON ledger_games (user_id, played_at_ms DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_games_total ON ledger_games (grand_total DESC)`,
		`
CREATE TABLE IF NOT EXISTS ledger_game_events (
    game_id TEXT NOT NULL REFERENCES ledger_games (game_id) ON DELETE CASCADE,
    seq ` + bigint + ` NOT NULL,
    event_type TEXT NOT NULL,
    envelope_b64 TEXT NOT NULL,
    server_ts_ms ` + bigint + `,
    PRIMARY KEY (game_id, seq)
)`,
	}
}
