package ports

import "context"

type LifecycleService interface {
	// EnsureRegistered — идемпотентная регистрация: первый контакт создаёт
	// trial-доступ, повторный возвращает существующую запись
	EnsureRegistered(ctx context.Context, accountID int64, username string) (isNew bool, e *Entitlement, err error)

	// GetEffectiveStatus — чтение с ленивым переводом в expired
	GetEffectiveStatus(ctx context.Context, accountID int64) (*Entitlement, error)

	// Renew — продление на days дней из любого статуса
	Renew(ctx context.Context, accountID int64, days int) (*Entitlement, error)

	ListAll(ctx context.Context) ([]*Entitlement, error)
}
