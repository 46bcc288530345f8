package yoomoney

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/vpn_access_bot/internal/domain"
	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type stubEntitlementRepo struct {
	rows map[int64]*ports.Entitlement
	err  error
}

func (r *stubEntitlementRepo) Get(ctx context.Context, accountID int64) (*ports.Entitlement, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.rows[accountID], nil
}

func (r *stubEntitlementRepo) CreateIfAbsent(ctx context.Context, e *ports.Entitlement) (bool, *ports.Entitlement, error) {
	return false, nil, errors.New("not used")
}

func (r *stubEntitlementRepo) ListAll(ctx context.Context) ([]*ports.Entitlement, error) {
	return nil, errors.New("not used")
}

func (r *stubEntitlementRepo) MarkExpired(ctx context.Context, accountID int64, now time.Time, sideEffect func(*ports.Entitlement) error) (bool, *ports.Entitlement, error) {
	e, ok := r.rows[accountID]
	if !ok {
		return false, nil, nil
	}
	if e.Status == ports.StatusExpired || !e.PeriodEnd.Before(now) {
		return false, e, nil
	}

	e.Status = ports.StatusExpired
	if sideEffect != nil {
		if err := sideEffect(e); err != nil {
			return false, nil, err
		}
	}
	return true, e, nil
}

func (r *stubEntitlementRepo) Renew(ctx context.Context, accountID int64, start, end time.Time, sideEffect func(*ports.Entitlement) error) (*ports.Entitlement, error) {
	e, ok := r.rows[accountID]
	if !ok {
		return nil, ports.ErrEntitlementNotFound
	}

	e.Status = ports.StatusActive
	e.PeriodStart = start
	e.PeriodEnd = end
	if sideEffect != nil {
		if err := sideEffect(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

type memAppliedRepo struct {
	mu  sync.Mutex
	ops map[string]bool
}

func newMemAppliedRepo() *memAppliedRepo {
	return &memAppliedRepo{ops: make(map[string]bool)}
}

func (r *memAppliedRepo) Claim(ctx context.Context, accountID int64, operationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops[operationID] {
		return false, nil
	}
	r.ops[operationID] = true
	return true, nil
}

func (r *memAppliedRepo) Release(ctx context.Context, operationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, operationID)
	return nil
}

type renewCall struct {
	accountID int64
	days      int
}

type stubLifecycle struct {
	renews []renewCall
	err    error
}

func (s *stubLifecycle) EnsureRegistered(ctx context.Context, accountID int64, username string) (bool, *ports.Entitlement, error) {
	return false, nil, errors.New("not used")
}

func (s *stubLifecycle) GetEffectiveStatus(ctx context.Context, accountID int64) (*ports.Entitlement, error) {
	return nil, errors.New("not used")
}

func (s *stubLifecycle) ListAll(ctx context.Context) ([]*ports.Entitlement, error) {
	return nil, errors.New("not used")
}

func (s *stubLifecycle) Renew(ctx context.Context, accountID int64, days int) (*ports.Entitlement, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.renews = append(s.renews, renewCall{accountID: accountID, days: days})

	now := time.Now().UTC()
	return &ports.Entitlement{
		AccountID:    accountID,
		Status:       ports.StatusActive,
		PeriodStart:  now,
		PeriodEnd:    now.Add(time.Duration(days) * 24 * time.Hour),
		AccessConfig: "vless://ref@host:443?security=tls#user_42",
	}, nil
}

type recordingNotifier struct {
	messages []string
	fail     bool
}

func (n *recordingNotifier) Notify(ctx context.Context, err error, details string) error {
	return nil
}

func (n *recordingNotifier) UserNotify(ctx context.Context, chatID int64, text string) error {
	if n.fail {
		return errors.New("telegram is down")
	}
	n.messages = append(n.messages, text)
	return nil
}

func newTestApplier(t *testing.T) (*Service, *stubLifecycle, *memAppliedRepo, *recordingNotifier) {
	t.Helper()

	repo := &stubEntitlementRepo{rows: map[int64]*ports.Entitlement{
		42: {AccountID: 42, Status: ports.StatusExpired, ProvisioningRef: "ref"},
	}}
	applied := newMemAppliedRepo()
	lifecycle := &stubLifecycle{}
	notifier := &recordingNotifier{}

	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	return NewService(verifier, repo, applied, lifecycle, notifier), lifecycle, applied, notifier
}

func TestApplyHappyPath(t *testing.T) {
	svc, lifecycle, _, notifier := newTestApplier(t)

	err := svc.Apply(context.Background(), validPayload(time.Now()))
	require.NoError(t, err)

	require.Equal(t, []renewCall{{accountID: 42, days: 30}}, lifecycle.renews)
	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "30 дней")
	require.Contains(t, notifier.messages[0], "vless://")
}

func TestApplyDuplicateIsNoOp(t *testing.T) {
	svc, lifecycle, _, _ := newTestApplier(t)
	data := validPayload(time.Now())

	require.NoError(t, svc.Apply(context.Background(), data))
	require.NoError(t, svc.Apply(context.Background(), data))

	// продление применилось ровно один раз
	require.Len(t, lifecycle.renews, 1)
}

func TestApplyBadSignature(t *testing.T) {
	svc, lifecycle, _, _ := newTestApplier(t)

	data := validPayload(time.Now())
	data["sha1_hash"] = "0000000000000000000000000000000000000000"

	err := svc.Apply(context.Background(), data)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, lifecycle.renews)
}

func TestApplyStaleNotification(t *testing.T) {
	svc, lifecycle, _, _ := newTestApplier(t)

	// подпись валидна, но уведомление старше окна свежести
	data := map[string]string{
		"notification_type": "p2p-incoming",
		"operation_id":      "op-old",
		"amount":            "500.00",
		"currency":          "643",
		"datetime":          time.Now().UTC().Add(-301 * time.Second).Format(time.RFC3339),
		"sender":            "41001000000000",
		"codepro":           "false",
		"label":             "user_42_30",
	}
	data["sha1_hash"] = signPayload(data, testSecret)

	err := svc.Apply(context.Background(), data)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, lifecycle.renews)
}

func TestApplyUnknownAccount(t *testing.T) {
	svc, lifecycle, _, _ := newTestApplier(t)

	data := map[string]string{
		"notification_type": "p2p-incoming",
		"operation_id":      "op-999",
		"amount":            "500.00",
		"currency":          "643",
		"datetime":          time.Now().UTC().Format(time.RFC3339),
		"sender":            "41001000000000",
		"codepro":           "false",
		"label":             "user_999_30",
	}
	data["sha1_hash"] = signPayload(data, testSecret)

	err := svc.Apply(context.Background(), data)
	require.ErrorIs(t, err, ErrUnknownAccount)
	require.Empty(t, lifecycle.renews)
}

func TestApplyNotifierFailureIsNonFatal(t *testing.T) {
	svc, lifecycle, _, notifier := newTestApplier(t)
	notifier.fail = true

	err := svc.Apply(context.Background(), validPayload(time.Now()))
	require.NoError(t, err)
	require.Len(t, lifecycle.renews, 1)
}

func TestApplyTransientRenewReleasesClaim(t *testing.T) {
	svc, lifecycle, applied, _ := newTestApplier(t)
	data := validPayload(time.Now())

	lifecycle.err = ports.Transient(errors.New("db is down"))

	err := svc.Apply(context.Background(), data)
	var terr *ports.TransientError
	require.ErrorAs(t, err, &terr)

	// отметка снята: ретрай провайдера пройдёт
	require.False(t, applied.ops[data["operation_id"]])

	lifecycle.err = nil
	require.NoError(t, svc.Apply(context.Background(), data))
	require.Len(t, lifecycle.renews, 1)
}

type countingGateway struct {
	reactivated int
}

func (g *countingGateway) Create(ctx context.Context, accountID int64) (string, string, error) {
	return "", "", errors.New("not used")
}

func (g *countingGateway) Deactivate(ctx context.Context, ref string) error { return nil }

func (g *countingGateway) Reactivate(ctx context.Context, ref string) error {
	g.reactivated++
	return nil
}

// Сквозной сценарий: просроченная запись, валидное уведомление,
// повторная доставка того же уведомления
func TestApplyRenewsExpiredEntitlement(t *testing.T) {
	past := time.Now().UTC().Add(-10 * 24 * time.Hour)

	repo := &stubEntitlementRepo{rows: map[int64]*ports.Entitlement{
		42: {
			AccountID:       42,
			Status:          ports.StatusExpired,
			PeriodStart:     past,
			PeriodEnd:       past.Add(7 * 24 * time.Hour),
			ProvisioningRef: "ref-42",
			AccessConfig:    "vless://ref-42@host:443?security=tls#user_42",
		},
	}}
	gw := &countingGateway{}
	notifier := &recordingNotifier{}

	lifecycle := domain.NewLifecycleService(repo, gw, notifier, 7)

	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	svc := NewService(verifier, repo, newMemAppliedRepo(), lifecycle, notifier)

	data := validPayload(time.Now())
	require.NoError(t, svc.Apply(context.Background(), data))

	e := repo.rows[42]
	require.Equal(t, ports.StatusActive, e.Status)
	require.Equal(t, 30*24*time.Hour, e.PeriodEnd.Sub(e.PeriodStart))
	require.Equal(t, 1, gw.reactivated)

	firstEnd := e.PeriodEnd

	// повтор того же operation_id: успех без изменений
	require.NoError(t, svc.Apply(context.Background(), data))
	require.Equal(t, firstEnd, repo.rows[42].PeriodEnd)
	require.Equal(t, 1, gw.reactivated)
}
