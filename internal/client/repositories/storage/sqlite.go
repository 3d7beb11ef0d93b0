package storage

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/favisend/internal/dbx"
)

// SQLiteStore is the Store backed by a *sql.DB.
type SQLiteStore struct {
	*SQLiteRepository
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{SQLiteRepository: NewSQLiteRepository(db), db: db}
}

// WithinTx runs fn against a transactional repository; all writes made by fn
// are committed together or not at all.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewSQLiteRepository(tx))
	})
}
