package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/quiz-client/config"
	"go.uber.org/zap"
)

// SQLStorage keeps items in a single client_storage table
type SQLStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLStorage wraps an open database handle
func NewSQLStorage(db *sql.DB, logger *zap.Logger) *SQLStorage {
	return &SQLStorage{
		db:     db,
		logger: logger,
	}
}

// OpenPostgres opens and pings a PostgreSQL connection pool
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return db, nil
}

// InitSchema creates the storage table when missing
func (s *SQLStorage) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS client_storage (
			key VARCHAR(255) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize storage schema: %w", err)
	}
	s.logger.Debug("storage schema initialized")
	return nil
}

func (s *SQLStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM client_storage WHERE key = $1`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get storage item: %w", err)
	}
	return value, true, nil
}

func (s *SQLStorage) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO client_storage (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set storage item: %w", err)
	}
	return nil
}

func (s *SQLStorage) RemoveItem(ctx context.Context, key string) error {
	query := `DELETE FROM client_storage WHERE key = $1`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove storage item: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (s *SQLStorage) Close() error {
	s.logger.Info("closing database connection")
	return s.db.Close()
}
