package domain

import "time"

const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusFailed   = "failed"
)

// Payment registra una solicitud de pago contra la pasarela.
// Authority es el codigo de referencia que la pasarela devuelve al crear la
// solicitud y el que llega en el callback de verificacion.
type Payment struct {
	ID         string     `json:"id"`
	TelegramID int64      `json:"telegram_id"`
	Amount     int        `json:"amount"` // en tomanes
	Authority  string     `json:"authority"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// AnalysisRecord es una entrada del historial de analisis.
type AnalysisRecord struct {
	ID         string    `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Tier       Tier      `json:"tier"`
	Report     []byte    `json:"report"` // JSON del AnalysisReport
	CreatedAt  time.Time `json:"created_at"`
}
