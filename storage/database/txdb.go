package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/edufacil/efs/core"
)

// TxDB adapts *sqlx.DB to core.DB, whose Begin methods return the
// core.DBTransactor interface rather than the concrete *sql.Tx.
type TxDB struct {
	*sqlx.DB
}

var _ core.DB = (*TxDB)(nil)

func NewTxDB(db *sqlx.DB) *TxDB { return &TxDB{DB: db} }

func (db *TxDB) Begin() (core.DBTransactor, error) {
	return db.DB.Begin()
}

func (db *TxDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return db.DB.BeginTx(ctx, opts)
}
