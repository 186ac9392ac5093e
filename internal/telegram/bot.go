package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/payment"
	"rostro-bot/internal/service"
)

// Bot conecta Telegram con la tuberia de analisis. Cada update se maneja en
// su propia goroutine: una foto lenta no bloquea al resto de los usuarios.
type Bot struct {
	api          *tgbotapi.BotAPI
	logger       *zap.Logger
	photos       *service.PhotoService
	entitlements *service.EntitlementService
	payments     payment.LinkProvider
	payLimiter   service.PaymentLinkLimiter
	httpClient   *http.Client
}

func NewBot(
	token string,
	logger *zap.Logger,
	photos *service.PhotoService,
	entitlements *service.EntitlementService,
	payments payment.LinkProvider,
	payLimiter service.PaymentLinkLimiter,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:          api,
		logger:       logger,
		photos:       photos,
		entitlements: entitlements,
		payments:     payments,
		payLimiter:   payLimiter,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run consume updates por long polling hasta que el contexto se cancele.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panic", zap.Any("panic", r))
		}
	}()

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.Text != "":
		b.handleMenuButton(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if _, err := b.entitlements.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName); err != nil {
			b.logger.Error("ensure user failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		}
		b.sendWithKeyboard(msg.Chat.ID, welcomeMessage)
	case "vip":
		b.handleVip(ctx, msg)
	case "status":
		b.sendStatus(ctx, msg)
	default:
		b.sendWithKeyboard(msg.Chat.ID, helpMessage)
	}
}

func (b *Bot) handleMenuButton(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Text {
	case buttonAnalyze:
		b.send(msg.Chat.ID, analyzeHelpMessage)
	case buttonVip:
		b.handleVip(ctx, msg)
	case buttonStatus:
		b.sendStatus(ctx, msg)
	case buttonHelp:
		b.send(msg.Chat.ID, helpMessage)
	case buttonAbout:
		b.send(msg.Chat.ID, aboutMessage)
	case buttonSupport:
		b.send(msg.Chat.ID, supportMessage)
	default:
		b.sendWithKeyboard(msg.Chat.ID, "📱 *Elige una opción del menú.* 👇")
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	processing, sendErr := b.api.Send(b.markdownMessage(chatID, processingMessage))
	if sendErr != nil {
		b.logger.Warn("send processing message failed", zap.Error(sendErr))
	}

	// Telegram manda la misma foto en varias resoluciones; la ultima es la
	// mas grande.
	photo := msg.Photo[len(msg.Photo)-1]
	imageBytes, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.Error("download photo failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.editOrSend(chatID, processing, errorMessage(domain.ErrKindProcessingError))
		return
	}

	outcome := b.photos.HandlePhoto(ctx, service.Submitter{
		TelegramID: msg.From.ID,
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
	}, imageBytes)

	switch outcome.Status {
	case domain.OutcomeRateLimited:
		b.editOrSend(chatID, processing, rateLimitMessage(outcome.WaitSeconds))
	case domain.OutcomeRejected:
		b.editOrSend(chatID, processing, errorMessage(outcome.Reject))
	case domain.OutcomeDenied:
		b.editOrSend(chatID, processing, alreadyUsedFreeMessage)
	case domain.OutcomeSuccess:
		b.editOrSend(chatID, processing, FormatReport(*outcome.Report))
		if outcome.Tier == domain.TierFree {
			b.send(chatID, subscriptionOfferMessage)
		}
	}
}

func (b *Bot) handleVip(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	telegramID := msg.From.ID

	tier, err := b.entitlements.ResolveTier(ctx, telegramID)
	if err != nil {
		b.logger.Error("resolve tier failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		b.send(chatID, paymentLinkFailedMessage)
		return
	}
	if tier == domain.TierVip {
		b.send(chatID, alreadyVipMessage)
		return
	}

	if b.payLimiter != nil && !b.payLimiter.Allow(fmt.Sprint(telegramID)) {
		b.send(chatID, paymentLinkThrottledMessage)
		return
	}

	b.send(chatID, vipPurchaseMessage)

	link, err := b.payments.CreateSubscriptionLink(ctx, telegramID)
	if err != nil {
		b.logger.Error("create payment link failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		b.send(chatID, paymentLinkFailedMessage)
		return
	}
	b.send(chatID, fmt.Sprintf("💳 *¡Tu link de pago está listo!* 🔗\n\n%s\n\n✅ Apenas pagues, tu cuenta pasa a VIP.", link))
}

func (b *Bot) sendStatus(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.entitlements.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		b.logger.Error("ensure user failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.send(msg.Chat.ID, errorMessage(domain.ErrKindProcessingError))
		return
	}
	b.sendWithKeyboard(msg.Chat.ID, statusMessage(user, user.VipActiveAt(time.Now())))
}

// NotifyVipActivated implementa la notificacion del callback de pago.
func (b *Bot) NotifyVipActivated(telegramID int64) {
	b.send(telegramID, paymentSuccessMessage)
}

// NotifyPaymentFailed avisa que el pago no se completo.
func (b *Bot) NotifyPaymentFailed(telegramID int64) {
	b.send(telegramID, paymentFailedMessage)
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status=%d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	return m
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(b.markdownMessage(chatID, text)); err != nil {
		b.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string) {
	m := b.markdownMessage(chatID, text)
	m.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.api.Send(m); err != nil {
		b.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// editOrSend reemplaza el mensaje de "procesando" por el resultado; si el
// mensaje intermedio nunca salio, manda uno nuevo.
func (b *Bot) editOrSend(chatID int64, processing tgbotapi.Message, text string) {
	if processing.MessageID == 0 {
		b.send(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, processing.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("edit message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.send(chatID, text)
	}
}
