package yoomoney

import (
	"context"
	"fmt"
	"log"

	"github.com/Vovarama1992/vpn_access_bot/internal/notificator"
	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

// Service применяет проверенное уведомление к записи доступа:
// verify → label → lookup → dedupe → renew → notify.
// Каждый шаг возвращает типизированный исход, обработчик вебхука
// транслирует его в HTTP-код.
type Service struct {
	verifier  *Verifier
	repo      ports.EntitlementRepo
	applied   ports.AppliedPaymentsRepo
	lifecycle ports.LifecycleService
	notifier  notificator.Notificator
}

func NewService(
	verifier *Verifier,
	repo ports.EntitlementRepo,
	applied ports.AppliedPaymentsRepo,
	lifecycle ports.LifecycleService,
	notifier notificator.Notificator,
) *Service {

	return &Service{
		verifier:  verifier,
		repo:      repo,
		applied:   applied,
		lifecycle: lifecycle,
		notifier:  notifier,
	}
}

func (s *Service) Apply(ctx context.Context, data map[string]string) error {

	if err := s.verifier.VerifySignature(data); err != nil {
		return err
	}
	if err := s.verifier.VerifyFreshness(data); err != nil {
		return err
	}

	accountID, days, err := ParseLabel(data["label"])
	if err != nil {
		return err
	}

	opID := data["operation_id"]
	if opID == "" {
		return verificationFailed("missing operation_id")
	}

	e, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return ports.Transient(fmt.Errorf("lookup account: %w", err))
	}
	if e == nil {
		log.Printf("[payments] op=%s label points to unknown account=%d", opID, accountID)
		return ErrUnknownAccount
	}

	// дедупликация до renew: провайдер может доставить уведомление повторно
	fresh, err := s.applied.Claim(ctx, accountID, opID)
	if err != nil {
		return ports.Transient(fmt.Errorf("claim operation: %w", err))
	}
	if !fresh {
		log.Printf("[payments] duplicate op=%s account=%d, no-op", opID, accountID)
		return nil
	}

	renewed, err := s.lifecycle.Renew(ctx, accountID, days)
	if err != nil {
		// снимаем отметку, иначе ретрай провайдера упрётся в "дубликат"
		if rerr := s.applied.Release(ctx, opID); rerr != nil {
			log.Printf("[payments] release op=%s failed: %v", opID, rerr)
		}
		if err == ports.ErrEntitlementNotFound {
			return ErrUnknownAccount
		}
		return err
	}

	log.Printf("[payments] op=%s account=%d renewed for %d days", opID, accountID, days)

	// уведомление — best effort, оплата уже применена
	text := fmt.Sprintf(
		"✅ Оплата успешна!\nВаша подписка активирована на %d дней.\n\n"+
			"Ваша конфигурация VPN (скопируйте строку):\n%s",
		days,
		renewed.AccessConfig,
	)
	if nerr := s.notifier.UserNotify(ctx, accountID, text); nerr != nil {
		log.Printf("[payments] user notify failed account=%d: %v", accountID, nerr)
	}

	return nil
}
