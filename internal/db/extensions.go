package db

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var Schema string

// GetDBTX returns the underlying connection or transaction.
func (q *Queries) GetDBTX() DBTX {
	return q.db
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, conn DBTX) error {
	_, err := conn.Exec(ctx, Schema)
	return err
}
