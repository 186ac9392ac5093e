package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/repository"
	"rostro-bot/internal/service"
)

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, p domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.Authority] = &p
	return nil
}

func (m *mockPaymentRepo) GetByAuthority(_ context.Context, authority string) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[authority]
	if !ok {
		return domain.Payment{}, repository.ErrPaymentNotFound
	}
	return *p, nil
}

func (m *mockPaymentRepo) MarkVerified(_ context.Context, authority string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[authority]; ok {
		p.Status = domain.PaymentStatusVerified
		p.VerifiedAt = &at
	}
	return nil
}

func (m *mockPaymentRepo) MarkFailed(_ context.Context, authority string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[authority]; ok {
		p.Status = domain.PaymentStatusFailed
	}
	return nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) GetOrCreate(_ context.Context, telegramID int64, username, firstName string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	if !ok {
		u = &domain.User{TelegramID: telegramID, CreatedAt: time.Now()}
		m.users[telegramID] = u
	}
	return *u, nil
}

func (m *mockUserRepo) ClaimFreeAnalysis(_ context.Context, telegramID int64, at time.Time) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) ClearExpiredVip(_ context.Context, telegramID int64) error {
	return nil
}

func (m *mockUserRepo) UpgradeToVip(_ context.Context, telegramID int64, expires time.Time) error {
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

func (m *mockUserRepo) SetLastAnalysis(_ context.Context, telegramID int64, at time.Time) error {
	return nil
}

func (m *mockUserRepo) isVip(telegramID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[telegramID]
	return ok && u.IsVip
}

type mockVerifier struct {
	refID string
	err   error
	calls int
}

func (m *mockVerifier) VerifyPayment(_ context.Context, authority string, amount int) (string, error) {
	m.calls++
	return m.refID, m.err
}

type mockNotifier struct {
	activated []int64
	failed    []int64
}

func (m *mockNotifier) NotifyVipActivated(telegramID int64) {
	m.activated = append(m.activated, telegramID)
}

func (m *mockNotifier) NotifyPaymentFailed(telegramID int64) {
	m.failed = append(m.failed, telegramID)
}

type callbackFixture struct {
	router   *gin.Engine
	payments *mockPaymentRepo
	users    *mockUserRepo
	verifier *mockVerifier
	notifier *mockNotifier
}

func newCallbackFixture(t *testing.T) *callbackFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payments := newMockPaymentRepo()
	users := newMockUserRepo()
	verifier := &mockVerifier{refID: "ref-1"}
	notifier := &mockNotifier{}

	handler := NewPaymentHandler(
		zap.NewNop(),
		payments,
		verifier,
		service.NewEntitlementService(zap.NewNop(), users),
		notifier,
		30,
	)
	router := NewRouter(zap.NewNop(), nil, handler)

	return &callbackFixture{
		router:   router,
		payments: payments,
		users:    users,
		verifier: verifier,
		notifier: notifier,
	}
}

func (f *callbackFixture) seedPending(authority string, telegramID int64) {
	_ = f.payments.Create(context.Background(), domain.Payment{
		ID:         "pay-1",
		TelegramID: telegramID,
		Amount:     100000,
		Authority:  authority,
		Status:     domain.PaymentStatusPending,
		CreatedAt:  time.Now(),
	})
}

func (f *callbackFixture) get(t *testing.T, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	f.router.ServeHTTP(w, req)
	return w
}

func TestPaymentCallbackVerifiesAndActivatesVip(t *testing.T) {
	f := newCallbackFixture(t)
	f.seedPending("A-1", 42)

	w := f.get(t, "/payments/callback?Authority=A-1&Status=OK")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	p, _ := f.payments.GetByAuthority(context.Background(), "A-1")
	if p.Status != domain.PaymentStatusVerified {
		t.Fatalf("expected payment verified, got %s", p.Status)
	}
	if !f.users.isVip(42) {
		t.Fatalf("expected vip activated for user 42")
	}
	if len(f.notifier.activated) != 1 || f.notifier.activated[0] != 42 {
		t.Fatalf("expected activation notice for 42, got %v", f.notifier.activated)
	}
}

func TestPaymentCallbackCancelled(t *testing.T) {
	f := newCallbackFixture(t)
	f.seedPending("A-1", 42)

	w := f.get(t, "/payments/callback?Authority=A-1&Status=NOK")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	p, _ := f.payments.GetByAuthority(context.Background(), "A-1")
	if p.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected payment failed, got %s", p.Status)
	}
	if f.users.isVip(42) {
		t.Fatalf("cancelled payment must not activate vip")
	}
	if f.verifier.calls != 0 {
		t.Fatalf("cancelled payment must not hit the gateway, got %d calls", f.verifier.calls)
	}
	if len(f.notifier.failed) != 1 {
		t.Fatalf("expected failure notice, got %v", f.notifier.failed)
	}
}

func TestPaymentCallbackVerificationRejected(t *testing.T) {
	f := newCallbackFixture(t)
	f.seedPending("A-1", 42)
	f.verifier.err = errors.New("code=-21")

	w := f.get(t, "/payments/callback?Authority=A-1&Status=OK")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	p, _ := f.payments.GetByAuthority(context.Background(), "A-1")
	if p.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected payment failed, got %s", p.Status)
	}
	if f.users.isVip(42) {
		t.Fatalf("rejected verification must not activate vip")
	}
}

func TestPaymentCallbackIdempotent(t *testing.T) {
	f := newCallbackFixture(t)
	f.seedPending("A-1", 42)

	f.get(t, "/payments/callback?Authority=A-1&Status=OK")
	w := f.get(t, "/payments/callback?Authority=A-1&Status=OK")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", w.Code)
	}
	if f.verifier.calls != 1 {
		t.Fatalf("repeated callback must not re-verify, got %d calls", f.verifier.calls)
	}
	if len(f.notifier.activated) != 1 {
		t.Fatalf("repeated callback must not re-notify, got %v", f.notifier.activated)
	}
}

func TestPaymentCallbackUnknownAuthority(t *testing.T) {
	f := newCallbackFixture(t)

	w := f.get(t, "/payments/callback?Authority=nope&Status=OK")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = f.get(t, "/payments/callback?Status=OK")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without authority, got %d", w.Code)
	}
}
