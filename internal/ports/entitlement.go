package ports

import (
	"context"
	"errors"
	"time"
)

const (
	StatusTrial   = "trial"
	StatusActive  = "active"
	StatusExpired = "expired"
)

var ErrEntitlementNotFound = errors.New("entitlement not found")

type Entitlement struct {
	AccountID       int64     `json:"account_id"`
	Username        string    `json:"username"`
	Status          string    `json:"status"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	ProvisioningRef string    `json:"provisioning_ref"`
	AccessConfig    string    `json:"access_config"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type EntitlementRepo interface {
	// CreateIfAbsent — вставка по первичному ключу account_id;
	// при гонке возвращает created=false и строку победителя
	CreateIfAbsent(ctx context.Context, e *Entitlement) (created bool, out *Entitlement, err error)

	Get(ctx context.Context, accountID int64) (*Entitlement, error)
	ListAll(ctx context.Context) ([]*Entitlement, error)

	// MarkExpired — условный флип в expired (только если period_end < now
	// и статус ещё не expired). sideEffect выполняется внутри транзакции,
	// до коммита: ошибка side-эффекта откатывает флип.
	MarkExpired(ctx context.Context, accountID int64, now time.Time, sideEffect func(*Entitlement) error) (flipped bool, out *Entitlement, err error)

	// Renew — новый период, статус active. sideEffect — как в MarkExpired.
	Renew(ctx context.Context, accountID int64, start, end time.Time, sideEffect func(*Entitlement) error) (*Entitlement, error)
}
