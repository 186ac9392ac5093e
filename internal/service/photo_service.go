package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/limiter"
	"rostro-bot/internal/repository"
)

// Submitter identifica al usuario que manda la foto.
type Submitter struct {
	TelegramID int64
	Username   string
	FirstName  string
}

// PhotoService orquesta la tuberia completa de una foto: admision por rate
// limit, validacion y extraccion, resolucion de tier y scoring. El orden es
// estricto y el chequeo de derechos relee estado actual, nunca cacheado.
type PhotoService struct {
	logger       *zap.Logger
	limiter      *limiter.SlidingWindow
	extractor    *FeatureExtractor
	scorer       *PersonalityScorer
	visionScorer *VisionScorer // nil si no hay modelo externo configurado
	entitlements *EntitlementService
	history      repository.HistoryRepository // nil-safe, best-effort
}

func NewPhotoService(
	logger *zap.Logger,
	lim *limiter.SlidingWindow,
	extractor *FeatureExtractor,
	scorer *PersonalityScorer,
	visionScorer *VisionScorer,
	entitlements *EntitlementService,
	history repository.HistoryRepository,
) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{
		logger:       logger,
		limiter:      lim,
		extractor:    extractor,
		scorer:       scorer,
		visionScorer: visionScorer,
		entitlements: entitlements,
		history:      history,
	}
}

// HandlePhoto procesa una foto y devuelve siempre un Outcome terminal.
// Ningun fallo por solicitud es fatal para el proceso: un panico inesperado
// se convierte en processing_error en la frontera.
func (s *PhotoService) HandlePhoto(ctx context.Context, from Submitter, image []byte) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("photo pipeline panic", zap.Int64("telegram_id", from.TelegramID), zap.Any("panic", r))
			outcome = domain.Outcome{Status: domain.OutcomeRejected, Reject: domain.ErrKindProcessingError}
		}
	}()

	// 1. Admision. Un rechazo no consume cupo y reporta la espera.
	if !s.limiter.Admit(from.TelegramID) {
		return domain.Outcome{
			Status:      domain.OutcomeRateLimited,
			WaitSeconds: s.limiter.WaitSeconds(from.TelegramID),
		}
	}

	// 2. Validacion y extraccion, antes de tocar derechos: una foto sin
	// rostro no quema el analisis gratuito.
	fv, err := s.extractor.Extract(image)
	if err != nil {
		kind := domain.KindOf(err)
		s.logger.Info("photo rejected",
			zap.Int64("telegram_id", from.TelegramID),
			zap.String("kind", string(kind)),
		)
		return domain.Outcome{Status: domain.OutcomeRejected, Reject: kind}
	}

	if _, err := s.entitlements.EnsureUser(ctx, from.TelegramID, from.Username, from.FirstName); err != nil {
		s.logger.Error("ensure user failed", zap.Int64("telegram_id", from.TelegramID), zap.Error(err))
		return domain.Outcome{Status: domain.OutcomeRejected, Reject: domain.ErrKindProcessingError}
	}

	// 3. Derechos, releidos despues de la admision.
	tier, err := s.entitlements.ResolveTier(ctx, from.TelegramID)
	if err != nil {
		s.logger.Error("resolve tier failed", zap.Int64("telegram_id", from.TelegramID), zap.Error(err))
		return domain.Outcome{Status: domain.OutcomeRejected, Reject: domain.ErrKindProcessingError}
	}

	var report domain.AnalysisReport
	switch tier {
	case domain.TierDenied:
		return domain.Outcome{Status: domain.OutcomeDenied}

	case domain.TierFree:
		// Reclamo antes del scoring: si el contexto muere despues, el cupo
		// ya quedo consumido (semantica aceptada de cobro al menos una vez).
		claimed, err := s.entitlements.ClaimFree(ctx, from.TelegramID)
		if err != nil {
			s.logger.Error("claim free failed", zap.Int64("telegram_id", from.TelegramID), zap.Error(err))
			return domain.Outcome{Status: domain.OutcomeRejected, Reject: domain.ErrKindProcessingError}
		}
		if !claimed {
			// Otra solicitud concurrente del mismo usuario gano el reclamo.
			return domain.Outcome{Status: domain.OutcomeDenied}
		}
		report = s.scorer.ScoreFree(fv)

	case domain.TierVip:
		base := s.vipBase(ctx, image, fv)
		report = s.scorer.ExtendVip(base, fv)
		s.entitlements.MarkVipAnalysis(ctx, from.TelegramID)
	}

	s.recordHistory(ctx, from.TelegramID, tier, report)

	return domain.Outcome{Status: domain.OutcomeSuccess, Report: &report, Tier: tier}
}

// vipBase usa el modelo de vision externo cuando esta configurado; si no,
// la base heuristica. El scorer externo nunca falla: degrada solo.
func (s *PhotoService) vipBase(ctx context.Context, image []byte, fv domain.FeatureVector) domain.AnalysisReport {
	if s.visionScorer != nil {
		return s.visionScorer.Score(ctx, image, fv)
	}
	return s.scorer.ScoreFree(fv)
}

// recordHistory es fire-and-forget: un fallo del sink se loguea y no toca
// el resultado de la tuberia.
func (s *PhotoService) recordHistory(ctx context.Context, telegramID int64, tier domain.Tier, report domain.AnalysisReport) {
	if s.history == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("marshal report for history failed", zap.Error(err))
		return
	}
	record := domain.AnalysisRecord{
		ID:         uuid.NewString(),
		TelegramID: telegramID,
		Tier:       tier,
		Report:     payload,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.history.Record(ctx, record); err != nil {
		s.logger.Warn("record analysis history failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
}
