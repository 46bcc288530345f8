package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type entitlementRepo struct {
	db *sql.DB
}

func NewEntitlementRepo(db *sql.DB) ports.EntitlementRepo {
	return &entitlementRepo{db: db}
}

const entitlementColumns = `
	account_id,
	username,
	status,
	period_start,
	period_end,
	provisioning_ref,
	access_config,
	updated_at
`

func scanEntitlement(row interface{ Scan(...any) error }) (*ports.Entitlement, error) {
	var e ports.Entitlement
	err := row.Scan(
		&e.AccountID,
		&e.Username,
		&e.Status,
		&e.PeriodStart,
		&e.PeriodEnd,
		&e.ProvisioningRef,
		&e.AccessConfig,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entitlementRepo) CreateIfAbsent(
	ctx context.Context,
	e *ports.Entitlement,
) (bool, *ports.Entitlement, error) {

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO entitlements (
			account_id,
			username,
			status,
			period_start,
			period_end,
			provisioning_ref,
			access_config,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (account_id) DO NOTHING
		RETURNING `+entitlementColumns,
		e.AccountID,
		e.Username,
		e.Status,
		e.PeriodStart,
		e.PeriodEnd,
		e.ProvisioningRef,
		e.AccessConfig,
		time.Now().UTC(),
	)

	out, err := scanEntitlement(row)
	if err == sql.ErrNoRows {
		// проиграли гонку первой регистрации: отдаём строку победителя
		winner, gerr := r.Get(ctx, e.AccountID)
		if gerr != nil {
			return false, nil, gerr
		}
		return false, winner, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, out, nil
}

func (r *entitlementRepo) Get(ctx context.Context, accountID int64) (*ports.Entitlement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+entitlementColumns+`
		FROM entitlements
		WHERE account_id = $1
	`, accountID)

	e, err := scanEntitlement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *entitlementRepo) ListAll(ctx context.Context) ([]*ports.Entitlement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entitlementColumns+`
		FROM entitlements
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*ports.Entitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkExpired — условный флип: срабатывает только если срок вышел и статус
// ещё не expired. sideEffect (деактивация в шлюзе) выполняется до коммита,
// поэтому флип и деактивация либо проходят вместе, либо откатываются вместе.
func (r *entitlementRepo) MarkExpired(
	ctx context.Context,
	accountID int64,
	now time.Time,
	sideEffect func(*ports.Entitlement) error,
) (bool, *ports.Entitlement, error) {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE entitlements
		SET status = $1, updated_at = $2
		WHERE account_id = $3
		  AND status <> $1
		  AND period_end < $2
		RETURNING `+entitlementColumns,
		ports.StatusExpired, now, accountID,
	)

	e, err := scanEntitlement(row)
	if err == sql.ErrNoRows {
		// кто-то успел продлить или уже перевёл в expired
		current, gerr := r.Get(ctx, accountID)
		return false, current, gerr
	}
	if err != nil {
		return false, nil, err
	}

	if sideEffect != nil {
		if err := sideEffect(e); err != nil {
			return false, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, nil, err
	}

	return true, e, nil
}

// Renew — новый период из любого прежнего статуса. sideEffect — как в MarkExpired.
func (r *entitlementRepo) Renew(
	ctx context.Context,
	accountID int64,
	start, end time.Time,
	sideEffect func(*ports.Entitlement) error,
) (*ports.Entitlement, error) {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE entitlements
		SET status = $1, period_start = $2, period_end = $3, updated_at = $4
		WHERE account_id = $5
		RETURNING `+entitlementColumns,
		ports.StatusActive, start, end, time.Now().UTC(), accountID,
	)

	e, err := scanEntitlement(row)
	if err == sql.ErrNoRows {
		return nil, ports.ErrEntitlementNotFound
	}
	if err != nil {
		return nil, err
	}

	if sideEffect != nil {
		if err := sideEffect(e); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return e, nil
}
