package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fittrack-bot/config"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    telegram_id BIGINT PRIMARY KEY,
    chat_id     BIGINT NOT NULL,
    username    TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    token       TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *PostgresDB) SaveSession(ctx context.Context, s *models.Session) error {
	query := `
        INSERT INTO sessions (telegram_id, chat_id, username, email, token)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (telegram_id) DO UPDATE
        SET chat_id = $2, username = $3, email = $4, token = $5, updated_at = NOW()
        RETURNING created_at, updated_at
    `

	err := db.pool.QueryRow(ctx, query,
		s.TelegramID, s.ChatID, s.Username, s.Email, s.Token,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (db *PostgresDB) GetSession(ctx context.Context, telegramID int64) (*models.Session, error) {
	query := `
        SELECT telegram_id, chat_id, username, email, token, created_at, updated_at
        FROM sessions
        WHERE telegram_id = $1
    `

	var s models.Session
	err := db.pool.QueryRow(ctx, query, telegramID).Scan(
		&s.TelegramID, &s.ChatID, &s.Username, &s.Email, &s.Token,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNoSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &s, nil
}

func (db *PostgresDB) DeleteSession(ctx context.Context, telegramID int64) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ session.Repository = (*PostgresDB)(nil)
