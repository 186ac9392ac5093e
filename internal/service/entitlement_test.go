package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"rostro-bot/internal/domain"
)

// mockUserRepo guarda el estado en memoria con la misma atomicidad que
// promete el repositorio real: ClaimFreeAnalysis es check-then-mark bajo
// candado.
type mockUserRepo struct {
	mu         sync.Mutex
	users      map[int64]*domain.User
	clearCalls int
	claimCalls int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		u = &domain.User{TelegramID: telegramID, Username: username, FirstName: firstName, CreatedAt: time.Now()}
		m.users[telegramID] = u
	}
	return *u, nil
}

func (m *mockUserRepo) ClaimFreeAnalysis(ctx context.Context, telegramID int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimCalls++
	u, ok := m.users[telegramID]
	if !ok || u.FreeAnalysisUsed {
		return false, nil
	}
	u.FreeAnalysisUsed = true
	u.LastAnalysis = &at
	return true, nil
}

func (m *mockUserRepo) ClearExpiredVip(ctx context.Context, telegramID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	if u, ok := m.users[telegramID]; ok {
		u.IsVip = false
		u.FreeAnalysisUsed = true
	}
	return nil
}

func (m *mockUserRepo) UpgradeToVip(ctx context.Context, telegramID int64, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		u = &domain.User{TelegramID: telegramID}
		m.users[telegramID] = u
	}
	u.IsVip = true
	u.VipExpires = &expires
	return nil
}

func (m *mockUserRepo) SetLastAnalysis(ctx context.Context, telegramID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[telegramID]; ok {
		u.LastAnalysis = &at
	}
	return nil
}

func (m *mockUserRepo) get(telegramID int64) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[telegramID]
}

func TestResolveTierFreshUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	tier, err := svc.ResolveTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tier != domain.TierFree {
		t.Fatalf("expected tier %s, got %s", domain.TierFree, tier)
	}
}

func TestResolveTierFreeUsed(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	if _, err := svc.EnsureUser(context.Background(), 1, "ana", "Ana"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	claimed, err := svc.ClaimFree(context.Background(), 1)
	if err != nil || !claimed {
		t.Fatalf("expected first claim to succeed, got %v/%v", claimed, err)
	}

	tier, err := svc.ResolveTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tier != domain.TierDenied {
		t.Fatalf("expected tier %s after claim, got %s", domain.TierDenied, tier)
	}
}

func TestResolveTierVipActive(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	if err := svc.ActivateVip(context.Background(), 1, 30); err != nil {
		t.Fatalf("activate vip: %v", err)
	}

	tier, err := svc.ResolveTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tier != domain.TierVip {
		t.Fatalf("expected tier %s, got %s", domain.TierVip, tier)
	}
}

func TestResolveTierVipExpiredLazily(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	if err := svc.ActivateVip(context.Background(), 1, 30); err != nil {
		t.Fatalf("activate vip: %v", err)
	}

	// Movemos el reloj del servicio 31 dias al futuro: la proxima lectura
	// debe observar la expiracion y hacerla efectiva.
	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	tier, err := svc.ResolveTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tier != domain.TierDenied {
		t.Fatalf("expected tier %s for expired vip, got %s", domain.TierDenied, tier)
	}
	if repo.clearCalls != 1 {
		t.Fatalf("expected expiry write-back, got %d calls", repo.clearCalls)
	}
	if repo.get(1).IsVip {
		t.Fatalf("expected is_vip cleared after lazy expiry")
	}

	// Un VIP vencido no vuelve a tener analisis gratuito.
	claimed, err := svc.ClaimFree(context.Background(), 1)
	if err != nil {
		t.Fatalf("claim free: %v", err)
	}
	if claimed {
		t.Fatalf("expired vip must not claim a free analysis")
	}
}

func TestResolveTierVipExpiredStaysDenied(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	// Pago siendo Fresh: el analisis gratuito nunca se uso.
	if err := svc.ActivateVip(context.Background(), 1, 30); err != nil {
		t.Fatalf("activate vip: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	// La primera lectura observa la expiracion y la hace efectiva; las
	// siguientes no pueden volver al tier gratuito.
	for i := 0; i < 3; i++ {
		tier, err := svc.ResolveTier(context.Background(), 1)
		if err != nil {
			t.Fatalf("resolve tier (read %d): %v", i+1, err)
		}
		if tier != domain.TierDenied {
			t.Fatalf("expected tier %s on read %d, got %s", domain.TierDenied, i+1, tier)
		}
	}

	u := repo.get(1)
	if u.IsVip {
		t.Fatalf("expected is_vip cleared")
	}
	if !u.FreeAnalysisUsed {
		t.Fatalf("expiry must leave the free entitlement spent")
	}
}

func TestVipExpiresExactly30Days(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if err := svc.ActivateVip(context.Background(), 1, 0); err != nil {
		t.Fatalf("activate vip: %v", err)
	}

	u := repo.get(1)
	want := base.Add(30 * 24 * time.Hour)
	if u.VipExpires == nil || !u.VipExpires.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, u.VipExpires)
	}
}

func TestClaimFreeConcurrentExactlyOne(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	if _, err := svc.EnsureUser(context.Background(), 7, "", ""); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := svc.ClaimFree(context.Background(), 7)
			if err != nil {
				t.Errorf("claim free: %v", err)
				return
			}
			results <- claimed
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for claimed := range results {
		if claimed {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", wins)
	}
}

func TestActivateVipFromUsedState(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewEntitlementService(zap.NewNop(), repo)

	if _, err := svc.EnsureUser(context.Background(), 1, "", ""); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if _, err := svc.ClaimFree(context.Background(), 1); err != nil {
		t.Fatalf("claim free: %v", err)
	}
	if err := svc.ActivateVip(context.Background(), 1, 30); err != nil {
		t.Fatalf("activate vip: %v", err)
	}

	tier, err := svc.ResolveTier(context.Background(), 1)
	if err != nil {
		t.Fatalf("resolve tier: %v", err)
	}
	if tier != domain.TierVip {
		t.Fatalf("payment must upgrade from any state, got %s", tier)
	}
}
