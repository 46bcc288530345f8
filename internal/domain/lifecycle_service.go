package domain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/vpn_access_bot/internal/notificator"
	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type LifecycleService struct {
	repo      ports.EntitlementRepo
	gateway   ports.ProvisioningGateway
	notifier  notificator.Notificator
	trialDays int

	now func() time.Time
}

func NewLifecycleService(
	repo ports.EntitlementRepo,
	gateway ports.ProvisioningGateway,
	notifier notificator.Notificator,
	trialDays int,
) *LifecycleService {

	return &LifecycleService{
		repo:      repo,
		gateway:   gateway,
		notifier:  notifier,
		trialDays: trialDays,
		now:       time.Now,
	}
}

// ==================================================
// REGISTER
// ==================================================
func (s *LifecycleService) EnsureRegistered(
	ctx context.Context,
	accountID int64,
	username string,
) (bool, *ports.Entitlement, error) {

	existing, err := s.repo.Get(ctx, accountID)
	if err != nil {
		s.notifier.Notify(ctx, err, "Ошибка чтения записи при регистрации")
		return false, nil, ports.Transient(fmt.Errorf("get entitlement: %w", err))
	}
	if existing != nil {
		return false, existing, nil
	}

	// Сначала создаём аккаунт в 3X-UI: ref и конфиг выдаются один раз
	// и переживают все продления
	ref, cfg, err := s.gateway.Create(ctx, accountID)
	if err != nil {
		s.notifier.Notify(ctx, err, "Шлюз 3X-UI не создал аккаунт")
		return false, nil, ports.Transient(fmt.Errorf("provision account: %w", err))
	}

	now := s.now().UTC()
	e := &ports.Entitlement{
		AccountID:       accountID,
		Username:        username,
		Status:          ports.StatusTrial,
		PeriodStart:     now,
		PeriodEnd:       now.Add(time.Duration(s.trialDays) * 24 * time.Hour),
		ProvisioningRef: ref,
		AccessConfig:    cfg,
	}

	created, out, err := s.repo.CreateIfAbsent(ctx, e)
	if err != nil {
		s.notifier.Notify(ctx, err, "Не удалось сохранить запись при регистрации")
		return false, nil, ports.Transient(fmt.Errorf("create entitlement: %w", err))
	}

	if created {
		log.Printf("[lifecycle] registered account=%d trial until %s",
			accountID, out.PeriodEnd.Format(time.RFC3339))
	}

	return created, out, nil
}

// ==================================================
// STATUS (ленивое expire)
// ==================================================
func (s *LifecycleService) GetEffectiveStatus(
	ctx context.Context,
	accountID int64,
) (*ports.Entitlement, error) {

	e, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, ports.Transient(fmt.Errorf("get entitlement: %w", err))
	}
	if e == nil {
		return nil, ports.ErrEntitlementNotFound
	}

	now := s.now().UTC()
	if e.Status == ports.StatusExpired || !e.PeriodEnd.Before(now) {
		return e, nil
	}

	// Просрочено: флип и деактивация в одной транзакции.
	// Условный UPDATE гарантирует, что флип (и деактивация) случится
	// ровно один раз, даже при параллельных чтениях.
	flipped, out, err := s.repo.MarkExpired(ctx, accountID, now,
		func(row *ports.Entitlement) error {
			return s.gateway.Deactivate(ctx, row.ProvisioningRef)
		},
	)
	if err != nil {
		s.notifier.Notify(ctx, err, "Не удалось перевести запись в expired")
		return nil, ports.Transient(fmt.Errorf("mark expired: %w", err))
	}
	if out == nil {
		return nil, ports.ErrEntitlementNotFound
	}
	if flipped {
		log.Printf("[lifecycle] account=%d expired, access deactivated", accountID)
	}

	return out, nil
}

// ==================================================
// RENEW
// ==================================================
func (s *LifecycleService) Renew(
	ctx context.Context,
	accountID int64,
	days int,
) (*ports.Entitlement, error) {

	now := s.now().UTC()
	end := now.Add(time.Duration(days) * 24 * time.Hour)

	e, err := s.repo.Renew(ctx, accountID, now, end,
		func(row *ports.Entitlement) error {
			return s.gateway.Reactivate(ctx, row.ProvisioningRef)
		},
	)
	if err == ports.ErrEntitlementNotFound {
		return nil, err
	}
	if err != nil {
		s.notifier.Notify(ctx, err, "Продление не прошло (БД или шлюз)")
		return nil, ports.Transient(fmt.Errorf("renew: %w", err))
	}

	log.Printf("[lifecycle] account=%d renewed for %d days until %s",
		accountID, days, e.PeriodEnd.Format(time.RFC3339))

	return e, nil
}

func (s *LifecycleService) ListAll(ctx context.Context) ([]*ports.Entitlement, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		s.notifier.Notify(ctx, err, "Ошибка чтения списка записей")
	}
	return list, err
}

// DaysLeft — целых дней до конца периода, для вывода не меньше нуля
func DaysLeft(e *ports.Entitlement, now time.Time) int {
	left := int(e.PeriodEnd.Sub(now.UTC()).Hours() / 24)
	if left < 0 {
		return 0
	}
	return left
}
