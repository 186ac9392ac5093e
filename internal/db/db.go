package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rostro-bot/internal/config"
)

// Pinger es lo minimo que el health check necesita del pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Configuración razonable para ambientes iniciales.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// EnsureSchema crea las tablas si no existen. Suficiente para despliegues
// de un solo binario sin herramienta de migraciones.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id        BIGINT PRIMARY KEY,
			username           TEXT,
			first_name         TEXT,
			is_vip             BOOLEAN NOT NULL DEFAULT FALSE,
			vip_expires        TIMESTAMPTZ,
			free_analysis_used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_analysis      TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS payments (
			id          UUID PRIMARY KEY,
			telegram_id BIGINT NOT NULL,
			amount      INTEGER NOT NULL,
			authority   TEXT UNIQUE NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			verified_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS payments_telegram_id_idx ON payments (telegram_id);

		CREATE TABLE IF NOT EXISTS analysis_history (
			id          UUID PRIMARY KEY,
			telegram_id BIGINT NOT NULL,
			tier        TEXT NOT NULL,
			report      JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS analysis_history_telegram_id_idx ON analysis_history (telegram_id);
	`
	_, err := pool.Exec(ctx, schema)
	return err
}
