// Package payment habla con la pasarela de pago. El nucleo solo consume la
// transicion resultante (pago confirmado → VIP activo), no el protocolo.
package payment

import (
	"context"
	"errors"
)

// LinkProvider crea links de pago de suscripcion.
type LinkProvider interface {
	CreateSubscriptionLink(ctx context.Context, telegramID int64) (string, error)
}

// Verifier confirma un pago contra la pasarela y devuelve la referencia.
type Verifier interface {
	VerifyPayment(ctx context.Context, authority string, amount int) (string, error)
}

type disabledProvider struct {
	reason string
}

// NewDisabledProvider devuelve un LinkProvider que siempre falla con la
// razon dada; se usa cuando la pasarela no esta configurada.
func NewDisabledProvider(reason string) LinkProvider {
	return &disabledProvider{reason: reason}
}

func (p *disabledProvider) CreateSubscriptionLink(_ context.Context, _ int64) (string, error) {
	if p.reason == "" {
		return "", errors.New("payment provider disabled")
	}
	return "", errors.New(p.reason)
}
