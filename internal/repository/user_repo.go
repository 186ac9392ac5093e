package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rostro-bot/internal/domain"
)

// UserRepository define el contrato de persistencia para el estado de
// derechos por usuario. ClaimFreeAnalysis debe ser atomico: dos solicitudes
// concurrentes del mismo usuario no pueden reclamar las dos el analisis
// gratuito.
type UserRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (domain.User, error)
	ClaimFreeAnalysis(ctx context.Context, telegramID int64, at time.Time) (bool, error)
	ClearExpiredVip(ctx context.Context, telegramID int64) error
	UpgradeToVip(ctx context.Context, telegramID int64, expires time.Time) error
	SetLastAnalysis(ctx context.Context, telegramID int64, at time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (domain.User, error) {
	const query = `
		INSERT INTO users (telegram_id, username, first_name, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NOW())
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name)
		RETURNING telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
			is_vip, vip_expires, free_analysis_used, created_at, last_analysis
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, telegramID, username, firstName).Scan(
		&u.TelegramID,
		&u.Username,
		&u.FirstName,
		&u.IsVip,
		&u.VipExpires,
		&u.FreeAnalysisUsed,
		&u.CreatedAt,
		&u.LastAnalysis,
	)
	return u, err
}

// ClaimFreeAnalysis marca el analisis gratuito como usado solo si seguia
// disponible. El WHERE condicional hace del check-then-mark una sola
// operacion transaccional.
func (r *PgUserRepository) ClaimFreeAnalysis(ctx context.Context, telegramID int64, at time.Time) (bool, error) {
	const query = `
		UPDATE users
		SET free_analysis_used = TRUE, last_analysis = $2
		WHERE telegram_id = $1 AND free_analysis_used = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, telegramID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearExpiredVip hace visible la expiracion perezosa: la lectura que noto
// vip_expires en el pasado escribe is_vip = false. Tambien marca el analisis
// gratuito como usado: un VIP vencido queda en el estado de derecho agotado,
// no vuelve a tener analisis gratuito aunque nunca lo haya usado.
func (r *PgUserRepository) ClearExpiredVip(ctx context.Context, telegramID int64) error {
	const query = `
		UPDATE users SET is_vip = FALSE, free_analysis_used = TRUE WHERE telegram_id = $1
	`
	_, err := r.pool.Exec(ctx, query, telegramID)
	return err
}

func (r *PgUserRepository) UpgradeToVip(ctx context.Context, telegramID int64, expires time.Time) error {
	const query = `
		UPDATE users SET is_vip = TRUE, vip_expires = $2 WHERE telegram_id = $1
	`
	_, err := r.pool.Exec(ctx, query, telegramID, expires)
	return err
}

func (r *PgUserRepository) SetLastAnalysis(ctx context.Context, telegramID int64, at time.Time) error {
	const query = `
		UPDATE users SET last_analysis = $2 WHERE telegram_id = $1
	`
	_, err := r.pool.Exec(ctx, query, telegramID, at)
	return err
}
