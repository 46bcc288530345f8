package infra

import (
	"context"
	"database/sql"
)

// InitSchema — создание таблиц при старте (как init_db в ранних версиях).
// Уникальность account_id сериализует гонку первой регистрации,
// уникальность operation_id — повторную доставку вебхука.
func InitSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entitlements (
			account_id       BIGINT PRIMARY KEY,
			username         TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			period_start     TIMESTAMPTZ NOT NULL,
			period_end       TIMESTAMPTZ NOT NULL,
			provisioning_ref TEXT NOT NULL,
			access_config    TEXT NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (period_end > period_start)
		)`,
		`CREATE TABLE IF NOT EXISTS applied_payments (
			operation_id TEXT PRIMARY KEY,
			account_id   BIGINT NOT NULL,
			applied_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tariff_plans (
			id    BIGSERIAL PRIMARY KEY,
			code  TEXT NOT NULL UNIQUE,
			name  TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			days  INT NOT NULL
		)`,
		`INSERT INTO tariff_plans (code, name, price, days)
		 VALUES
			('month',   '1 месяц',   500,  30),
			('quarter', '3 месяца',  1200, 90),
			('year',    '1 год',     5000, 365)
		 ON CONFLICT (code) DO NOTHING`,
	}

	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
