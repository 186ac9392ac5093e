package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rostro-bot/internal/domain"
)

// HistoryRepository registra analisis completados. Es un sink best-effort:
// quien lo llama no debe fallar la tuberia si Record devuelve error.
type HistoryRepository interface {
	Record(ctx context.Context, record domain.AnalysisRecord) error
}

// PgHistoryRepository implementa HistoryRepository usando pgxpool.
type PgHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgHistoryRepository(pool *pgxpool.Pool) *PgHistoryRepository {
	return &PgHistoryRepository{pool: pool}
}

func (r *PgHistoryRepository) Record(ctx context.Context, record domain.AnalysisRecord) error {
	const query = `
		INSERT INTO analysis_history (id, telegram_id, tier, report, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.TelegramID,
		string(record.Tier),
		record.Report,
		record.CreatedAt,
	)
	return err
}
