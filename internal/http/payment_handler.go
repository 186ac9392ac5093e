package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/payment"
	"rostro-bot/internal/repository"
	"rostro-bot/internal/service"
)

// Notifier avisa al usuario por el canal del bot el resultado de su pago.
type Notifier interface {
	NotifyVipActivated(telegramID int64)
	NotifyPaymentFailed(telegramID int64)
}

// PaymentHandler atiende el callback de la pasarela de pago.
type PaymentHandler struct {
	logger       *zap.Logger
	payments     repository.PaymentRepository
	verifier     payment.Verifier
	entitlements *service.EntitlementService
	notifier     Notifier
	vipDays      int
}

func NewPaymentHandler(
	logger *zap.Logger,
	payments repository.PaymentRepository,
	verifier payment.Verifier,
	entitlements *service.EntitlementService,
	notifier Notifier,
	vipDays int,
) *PaymentHandler {
	return &PaymentHandler{
		logger:       logger,
		payments:     payments,
		verifier:     verifier,
		entitlements: entitlements,
		notifier:     notifier,
		vipDays:      vipDays,
	}
}

// Callback maneja GET /payments/callback. La pasarela redirige aca con
// Authority y Status=OK|NOK despues de que el usuario paga o cancela.
func (h *PaymentHandler) Callback(c *gin.Context) {
	authority := c.Query("Authority")
	status := c.Query("Status")
	if authority == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authority"})
		return
	}

	ctx := c.Request.Context()
	pay, err := h.payments.GetByAuthority(ctx, authority)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		h.logger.Error("lookup payment failed", zap.String("authority", authority), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process payment"})
		return
	}

	// El callback puede repetirse; un pago ya verificado no se reactiva.
	if pay.Status == domain.PaymentStatusVerified {
		c.JSON(http.StatusOK, gin.H{"status": "already_verified"})
		return
	}

	if status != "OK" {
		h.markFailed(c, pay)
		return
	}

	if h.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway not configured"})
		return
	}

	refID, err := h.verifier.VerifyPayment(ctx, authority, pay.Amount)
	if err != nil {
		h.logger.Warn("payment verification failed",
			zap.String("authority", authority),
			zap.Int64("telegram_id", pay.TelegramID),
			zap.Error(err),
		)
		h.markFailed(c, pay)
		return
	}

	if err := h.payments.MarkVerified(ctx, authority, time.Now().UTC()); err != nil {
		h.logger.Error("mark payment verified failed", zap.String("authority", authority), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process payment"})
		return
	}
	if err := h.entitlements.ActivateVip(ctx, pay.TelegramID, h.vipDays); err != nil {
		h.logger.Error("activate vip failed", zap.Int64("telegram_id", pay.TelegramID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not activate subscription"})
		return
	}

	h.logger.Info("payment verified",
		zap.String("authority", authority),
		zap.Int64("telegram_id", pay.TelegramID),
		zap.String("ref_id", refID),
	)
	if h.notifier != nil {
		h.notifier.NotifyVipActivated(pay.TelegramID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "verified", "ref_id": refID})
}

func (h *PaymentHandler) markFailed(c *gin.Context, pay domain.Payment) {
	if err := h.payments.MarkFailed(c.Request.Context(), pay.Authority); err != nil {
		h.logger.Error("mark payment failed errored", zap.String("authority", pay.Authority), zap.Error(err))
	}
	if h.notifier != nil {
		h.notifier.NotifyPaymentFailed(pay.TelegramID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "failed"})
}
