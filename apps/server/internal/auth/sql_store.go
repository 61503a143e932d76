package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"yatzy-lite/apps/server/internal/sqldb"
)

// sqlStore keeps accounts and sessions in SQLite or PostgreSQL. Account IDs
// come from an auto-increment key that is never reused, so ledger rows stay
// bound to their owner across restarts.
type sqlStore struct {
	db *sqldb.DB
}

// NewSQLiteManager opens (or creates) the account tables in a SQLite file.
func NewSQLiteManager(dbPath string, sessionTTL time.Duration) (*Manager, error) {
	db, err := sqldb.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return newSQLManager(db, sessionTTL)
}

func NewPostgresManager(dsn string, sessionTTL time.Duration) (*Manager, error) {
	db, err := sqldb.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	return newSQLManager(db, sessionTTL)
}

func newSQLManager(db *sqldb.DB, sessionTTL time.Duration) (*Manager, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := db.Migrate(ctx, authSchema(db)); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewManagerWithStore(&sqlStore{db: db}, sessionTTL), nil
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) CreateAccount(ctx context.Context, acc Account, token string, expiresAt, now time.Time) (Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, err
	}
	defer func() { _ = tx.Rollback() }()

	username := acc.Username
	var hash any
	if acc.Guest {
		// Reserved until the id is known; ':' never passes validateUsername.
		username = "guest:" + token
	} else {
		hash = string(acc.PasswordHash)
	}

	nowMs := now.UTC().UnixMilli()
	id, err := s.db.InsertID(ctx, tx, `
INSERT INTO accounts (username, password_hash, guest, created_at_ms, last_login_at_ms)
VALUES (?, ?, ?, ?, ?)`, username, hash, boolInt(acc.Guest), nowMs, nowMs)
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			return Account{}, ErrUsernameTaken
		}
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	acc.ID = uint64(id)

	if acc.Guest {
		acc.Username = guestName(acc.ID)
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE accounts SET username = ? WHERE id = ?`), acc.Username, id); err != nil {
			return Account{}, fmt.Errorf("name guest %d: %w", id, err)
		}
	}
	if err := s.insertSession(ctx, tx, acc.ID, token, expiresAt, now); err != nil {
		return Account{}, err
	}
	if err := tx.Commit(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

func (s *sqlStore) AccountByUsername(ctx context.Context, username string) (Account, error) {
	var (
		acc   Account
		id    int64
		hash  sql.NullString
		guest int
	)
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
SELECT id, username, password_hash, guest
FROM accounts
WHERE username = ?`), username).Scan(&id, &acc.Username, &hash, &guest)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, errNotFound
	}
	if err != nil {
		return Account{}, err
	}
	acc.ID = uint64(id)
	acc.Guest = guest != 0
	if hash.Valid {
		acc.PasswordHash = []byte(hash.String)
	}
	return acc, nil
}

func (s *sqlStore) StartSession(ctx context.Context, accountID uint64, token string, expiresAt, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE accounts SET last_login_at_ms = ? WHERE id = ?`),
		now.UTC().UnixMilli(), int64(accountID)); err != nil {
		return err
	}
	if err := s.insertSession(ctx, tx, accountID, token, expiresAt, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) insertSession(ctx context.Context, tx *sql.Tx, accountID uint64, token string, expiresAt, now time.Time) error {
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
INSERT INTO auth_sessions (token, account_id, issued_at_ms, expires_at_ms)
VALUES (?, ?, ?, ?)`), token, int64(accountID), now.UTC().UnixMilli(), expiresAt.UTC().UnixMilli()); err != nil {
		return fmt.Errorf("insert session for %d: %w", accountID, err)
	}
	return nil
}

func (s *sqlStore) ResolveSession(ctx context.Context, token string, now, expiresAt time.Time) (Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.db.Rebind(`
UPDATE auth_sessions
SET expires_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL
  AND expires_at_ms > ?`), expiresAt.UTC().UnixMilli(), token, now.UTC().UnixMilli())
	if err != nil {
		return Account{}, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return Account{}, errNotFound
	}

	var (
		acc   Account
		id    int64
		guest int
	)
	if err := tx.QueryRowContext(ctx, s.db.Rebind(`
SELECT a.id, a.username, a.guest
FROM auth_sessions AS s
JOIN accounts AS a ON a.id = s.account_id
WHERE s.token = ?`), token).Scan(&id, &acc.Username, &guest); err != nil {
		return Account{}, err
	}
	acc.ID = uint64(id)
	acc.Guest = guest != 0
	return acc, tx.Commit()
}

func (s *sqlStore) RevokeSession(ctx context.Context, token string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
UPDATE auth_sessions
SET revoked_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL`), now.UTC().UnixMilli(), token)
	return err
}

func (s *sqlStore) PruneSessions(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
DELETE FROM auth_sessions
WHERE expires_at_ms <= ?
   OR revoked_at_ms IS NOT NULL`), now.UTC().UnixMilli())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func authSchema(db *sqldb.DB) []string {
	bigint := db.BigInt()
	return []string{
		`
CREATE TABLE IF NOT EXISTS accounts (
    id ` + db.SerialKey() + `,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    guest INTEGER NOT NULL DEFAULT 0,
    created_at_ms ` + bigint + ` NOT NULL,
    last_login_at_ms ` + bigint + `
)`,
		`
CREATE TABLE IF NOT EXISTS auth_sessions (
    token TEXT PRIMARY KEY,
    account_id ` + bigint + ` NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
    issued_at_ms ` + bigint + ` NOT NULL,
    expires_at_ms ` + bigint + ` NOT NULL,
    revoked_at_ms ` + bigint + `
)`,
		`CREATE INDEX IF NOT EXISTS idx_auth_sessions_expiry ON auth_sessions (expires_at_ms)`,
	}
}
