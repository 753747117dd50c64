package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mifoto-print/logger"
)

// DB holds the database connection
var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS cart_snapshots (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	grand_total NUMERIC(12, 2) NOT NULL DEFAULT 0,
	snapshot    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_cart_snapshots_status ON cart_snapshots (status);
`

// InitDB opens the connection for dsn and makes sure the schema exists.
func InitDB(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}

	var err error
	DB, err = sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := EnsureSchema(ctx, DB); err != nil {
		return err
	}

	logger.L().Infof("✓ Database connection established successfully")
	return nil
}

// EnsureSchema creates the tables the service needs when they are missing.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
