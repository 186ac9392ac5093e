package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rostro-bot/internal/domain"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository define el contrato de persistencia para pagos.
type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) error
	GetByAuthority(ctx context.Context, authority string) (domain.Payment, error)
	MarkVerified(ctx context.Context, authority string, at time.Time) error
	MarkFailed(ctx context.Context, authority string) error
}

// PgPaymentRepository implementa PaymentRepository usando pgxpool.
type PgPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPgPaymentRepository(pool *pgxpool.Pool) *PgPaymentRepository {
	return &PgPaymentRepository{pool: pool}
}

func (r *PgPaymentRepository) Create(ctx context.Context, payment domain.Payment) error {
	const query = `
		INSERT INTO payments (id, telegram_id, amount, authority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.TelegramID,
		payment.Amount,
		payment.Authority,
		payment.Status,
		payment.CreatedAt,
	)
	return err
}

func (r *PgPaymentRepository) GetByAuthority(ctx context.Context, authority string) (domain.Payment, error) {
	const query = `
		SELECT id, telegram_id, amount, authority, status, created_at, verified_at
		FROM payments
		WHERE authority = $1
	`
	var p domain.Payment
	err := r.pool.QueryRow(ctx, query, authority).Scan(
		&p.ID,
		&p.TelegramID,
		&p.Amount,
		&p.Authority,
		&p.Status,
		&p.CreatedAt,
		&p.VerifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, ErrPaymentNotFound
	}
	return p, err
}

func (r *PgPaymentRepository) MarkVerified(ctx context.Context, authority string, at time.Time) error {
	const query = `
		UPDATE payments SET status = $2, verified_at = $3 WHERE authority = $1
	`
	_, err := r.pool.Exec(ctx, query, authority, domain.PaymentStatusVerified, at)
	return err
}

func (r *PgPaymentRepository) MarkFailed(ctx context.Context, authority string) error {
	const query = `
		UPDATE payments SET status = $2 WHERE authority = $1
	`
	_, err := r.pool.Exec(ctx, query, authority, domain.PaymentStatusFailed)
	return err
}
