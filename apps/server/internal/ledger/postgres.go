package ledger

import (
	"context"
	"time"

	"yatzy-lite/apps/server/internal/sqldb"
)

type PostgresService struct {
	sqlStore
}

func NewPostgresService(dsn string, recentLimit int) (*PostgresService, error) {
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	db, err := sqldb.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	svc := &PostgresService{sqlStore{db: db, recentLimit: recentLimit}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return svc, nil
}
