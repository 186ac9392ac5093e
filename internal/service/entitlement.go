package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/repository"
)

// EntitlementService decide que tier puede invocar cada usuario y ejecuta
// las transiciones de estado. El check-then-mark del analisis gratuito es
// una seccion critica por usuario: un candado por clave, nunca un candado
// global para todos los usuarios.
type EntitlementService struct {
	logger *zap.Logger
	users  repository.UserRepository
	now    func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewEntitlementService(logger *zap.Logger, users repository.UserRepository) *EntitlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntitlementService{
		logger: logger,
		users:  users,
		now:    time.Now,
		locks:  make(map[int64]*sync.Mutex),
	}
}

func (s *EntitlementService) userLock(telegramID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[telegramID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[telegramID] = l
	}
	return l
}

// EnsureUser crea el registro con los defaults en el primer contacto.
func (s *EntitlementService) EnsureUser(ctx context.Context, telegramID int64, username, firstName string) (domain.User, error) {
	return s.users.GetOrCreate(ctx, telegramID, username, firstName)
}

// ResolveTier relee el estado actual (la expiracion VIP se evalua en la
// lectura, no por barrido) y decide: VIP vigente → Vip; gratuito todavia
// disponible → Free; todo lo demas, incluido el VIP vencido, → Denied.
func (s *EntitlementService) ResolveTier(ctx context.Context, telegramID int64) (domain.Tier, error) {
	lock := s.userLock(telegramID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.users.GetOrCreate(ctx, telegramID, "", "")
	if err != nil {
		return domain.TierDenied, fmt.Errorf("read entitlement for %d: %w", telegramID, err)
	}

	now := s.now()
	if user.IsVip {
		if user.VipActiveAt(now) {
			return domain.TierVip, nil
		}
		// Expiracion perezosa: esta lectura la hace efectiva. Un VIP vencido
		// cuenta como derecho gratuito agotado, no vuelve a Fresh.
		if err := s.users.ClearExpiredVip(ctx, telegramID); err != nil {
			s.logger.Warn("clear expired vip failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
		return domain.TierDenied, nil
	}

	if user.FreeAnalysisUsed {
		return domain.TierDenied, nil
	}
	return domain.TierFree, nil
}

// ClaimFree reclama el unico analisis gratuito. Devuelve false si otra
// solicitud lo gano: de dos pedidos concurrentes del mismo usuario fresco,
// exactamente uno reclama.
func (s *EntitlementService) ClaimFree(ctx context.Context, telegramID int64) (bool, error) {
	lock := s.userLock(telegramID)
	lock.Lock()
	defer lock.Unlock()

	claimed, err := s.users.ClaimFreeAnalysis(ctx, telegramID, s.now())
	if err != nil {
		return false, fmt.Errorf("claim free analysis for %d: %w", telegramID, err)
	}
	return claimed, nil
}

// ActivateVip aplica la transicion por pago confirmado desde cualquier
// estado y fija el vencimiento.
func (s *EntitlementService) ActivateVip(ctx context.Context, telegramID int64, days int) error {
	if days <= 0 {
		days = 30
	}
	lock := s.userLock(telegramID)
	lock.Lock()
	defer lock.Unlock()

	expires := s.now().Add(time.Duration(days) * 24 * time.Hour)
	if err := s.users.UpgradeToVip(ctx, telegramID, expires); err != nil {
		return fmt.Errorf("upgrade to vip for %d: %w", telegramID, err)
	}
	s.logger.Info("vip activated", zap.Int64("telegram_id", telegramID), zap.Time("expires", expires))
	return nil
}

// MarkVipAnalysis registra la fecha del ultimo analisis de un usuario VIP.
func (s *EntitlementService) MarkVipAnalysis(ctx context.Context, telegramID int64) {
	if err := s.users.SetLastAnalysis(ctx, telegramID, s.now()); err != nil {
		s.logger.Warn("set last analysis failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
}
