package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/repository"
)

const (
	sandboxRequestURL = "https://sandbox.zarinpal.com/pg/rest/WebGate/PaymentRequest.json"
	sandboxVerifyURL  = "https://sandbox.zarinpal.com/pg/rest/WebGate/PaymentVerification.json"
	sandboxGatewayURL = "https://sandbox.zarinpal.com/pg/StartPay/"

	liveRequestURL = "https://api.zarinpal.com/pg/v4/payment/request.json"
	liveVerifyURL  = "https://api.zarinpal.com/pg/v4/payment/verify.json"
	liveGatewayURL = "https://www.zarinpal.com/pg/StartPay/"

	// Codigo de exito de la pasarela.
	zarinpalOK = 100
)

const subscriptionDescription = "Suscripción mensual VIP del bot de análisis de personalidad"

// ZarinPal implementa LinkProvider y Verifier contra la pasarela ZarinPal,
// guardando cada solicitud como pago pendiente.
type ZarinPal struct {
	merchantID  string
	callbackURL string
	amount      int // tomanes
	sandbox     bool
	client      *http.Client
	payments    repository.PaymentRepository
	logger      *zap.Logger
}

func NewZarinPal(merchantID, callbackURL string, amount int, sandbox bool, payments repository.PaymentRepository, logger *zap.Logger) *ZarinPal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZarinPal{
		merchantID:  merchantID,
		callbackURL: callbackURL,
		amount:      amount,
		sandbox:     sandbox,
		client:      &http.Client{Timeout: 10 * time.Second},
		payments:    payments,
		logger:      logger,
	}
}

func (z *ZarinPal) requestURL() string {
	if z.sandbox {
		return sandboxRequestURL
	}
	return liveRequestURL
}

func (z *ZarinPal) verifyURL() string {
	if z.sandbox {
		return sandboxVerifyURL
	}
	return liveVerifyURL
}

func (z *ZarinPal) gatewayURL() string {
	if z.sandbox {
		return sandboxGatewayURL
	}
	return liveGatewayURL
}

type paymentRequest struct {
	MerchantID  string `json:"merchant_id"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	CallbackURL string `json:"callback_url"`
}

type verifyRequest struct {
	MerchantID string `json:"merchant_id"`
	Amount     int    `json:"amount"`
	Authority  string `json:"authority"`
}

type gatewayResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Authority string `json:"authority"`
		RefID     any    `json:"ref_id"`
	} `json:"data"`
}

// CreateSubscriptionLink pide una autoridad de pago, persiste el pago como
// pendiente y devuelve la URL de la pasarela.
func (z *ZarinPal) CreateSubscriptionLink(ctx context.Context, telegramID int64) (string, error) {
	var resp gatewayResponse
	err := z.post(ctx, z.requestURL(), paymentRequest{
		MerchantID:  z.merchantID,
		Amount:      z.amount,
		Description: subscriptionDescription,
		CallbackURL: z.callbackURL,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("payment request: %w", err)
	}
	if resp.Data.Code != zarinpalOK || resp.Data.Authority == "" {
		return "", fmt.Errorf("payment request rejected: code=%d", resp.Data.Code)
	}

	pay := domain.Payment{
		ID:         uuid.NewString(),
		TelegramID: telegramID,
		Amount:     z.amount,
		Authority:  resp.Data.Authority,
		Status:     domain.PaymentStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := z.payments.Create(ctx, pay); err != nil {
		return "", fmt.Errorf("store pending payment: %w", err)
	}

	return z.gatewayURL() + resp.Data.Authority, nil
}

// VerifyPayment confirma la autoridad contra la pasarela y devuelve la
// referencia de la transaccion.
func (z *ZarinPal) VerifyPayment(ctx context.Context, authority string, amount int) (string, error) {
	var resp gatewayResponse
	err := z.post(ctx, z.verifyURL(), verifyRequest{
		MerchantID: z.merchantID,
		Amount:     amount,
		Authority:  authority,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("payment verify: %w", err)
	}
	if resp.Data.Code != zarinpalOK {
		return "", fmt.Errorf("payment not verified: code=%d", resp.Data.Code)
	}
	return fmt.Sprint(resp.Data.RefID), nil
}

func (z *ZarinPal) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		z.logger.Warn("gateway error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return fmt.Errorf("gateway http error: status=%d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
