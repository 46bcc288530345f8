package infra

import (
	"context"
	"database/sql"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type appliedPaymentsRepo struct {
	db *sql.DB
}

func NewAppliedPaymentsRepo(db *sql.DB) ports.AppliedPaymentsRepo {
	return &appliedPaymentsRepo{db: db}
}

// Claim — фиксируем operation_id; false, если уже применялся
func (r *appliedPaymentsRepo) Claim(
	ctx context.Context,
	accountID int64,
	operationID string,
) (bool, error) {

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO applied_payments (operation_id, account_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, operationID, accountID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Release — снимаем отметку, чтобы ретрай провайдера прошёл заново
func (r *appliedPaymentsRepo) Release(ctx context.Context, operationID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM applied_payments
		WHERE operation_id = $1
	`, operationID)
	return err
}
