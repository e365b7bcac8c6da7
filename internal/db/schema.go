package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed sql/schema.sql
var schemaSQL string

// Migrate creates the trading results table and its indexes if they are missing
func Migrate(ctx context.Context, conn DBTX) error {
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
