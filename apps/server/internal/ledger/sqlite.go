package ledger

import (
	"context"
	"time"

	"yatzy-lite/apps/server/internal/sqldb"
)

type SQLiteService struct {
	sqlStore
}

func NewSQLiteService(dbPath string, recentLimit int) (*SQLiteService, error) {
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	db, err := sqldb.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	svc := &SQLiteService{sqlStore{db: db, recentLimit: recentLimit}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return svc, nil
}
