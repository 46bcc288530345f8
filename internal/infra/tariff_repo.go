package infra

import (
	"context"
	"database/sql"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type tariffRepo struct {
	db *sql.DB
}

func NewTariffRepo(db *sql.DB) ports.TariffRepo {
	return &tariffRepo{db: db}
}

func (r *tariffRepo) ListAll(ctx context.Context) ([]*ports.TariffPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id,
			code,
			name,
			price,
			days
		FROM tariff_plans
		ORDER BY days ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*ports.TariffPlan
	for rows.Next() {
		var t ports.TariffPlan
		if err := rows.Scan(
			&t.ID,
			&t.Code,
			&t.Name,
			&t.Price,
			&t.Days,
		); err != nil {
			return nil, err
		}
		plans = append(plans, &t)
	}
	return plans, rows.Err()
}

func (r *tariffRepo) GetByCode(ctx context.Context, code string) (*ports.TariffPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id,
			code,
			name,
			price,
			days
		FROM tariff_plans
		WHERE code = $1
	`, code)

	var t ports.TariffPlan
	if err := row.Scan(
		&t.ID,
		&t.Code,
		&t.Name,
		&t.Price,
		&t.Days,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &t, nil
}

func (r *tariffRepo) Create(ctx context.Context, plan *ports.TariffPlan) (*ports.TariffPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO tariff_plans (code, name, price, days)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, name, price, days
	`,
		plan.Code,
		plan.Name,
		plan.Price,
		plan.Days,
	)

	var t ports.TariffPlan
	if err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Price, &t.Days); err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *tariffRepo) Update(ctx context.Context, plan *ports.TariffPlan) (*ports.TariffPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE tariff_plans
		SET code = $1, name = $2, price = $3, days = $4
		WHERE id = $5
		RETURNING id, code, name, price, days
	`,
		plan.Code,
		plan.Name,
		plan.Price,
		plan.Days,
		plan.ID,
	)

	var t ports.TariffPlan
	if err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Price, &t.Days); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &t, nil
}

func (r *tariffRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM tariff_plans
		WHERE id = $1
	`, id)
	return err
}
