// Package mysqlstore implements the relational store contracts on MySQL.
package mysqlstore

import (
	"database/sql"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"go.uber.org/zap"
)

type Store struct {
	db     *sql.DB
	txOpts database.TxOptions
	logger *zap.Logger
}

func New(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		txOpts: database.DefaultTxOptions(),
		logger: logger,
	}
}

var _ store.Store = (*Store)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}
