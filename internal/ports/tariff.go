package ports

import "context"

type TariffPlan struct {
	ID    int64   `json:"id"`
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Days  int     `json:"days"`
}

type TariffRepo interface {
	ListAll(ctx context.Context) ([]*TariffPlan, error)
	GetByCode(ctx context.Context, code string) (*TariffPlan, error)
	Create(ctx context.Context, plan *TariffPlan) (*TariffPlan, error)
	Update(ctx context.Context, plan *TariffPlan) (*TariffPlan, error)
	Delete(ctx context.Context, id int64) error
}

type TariffService interface {
	ListAll(ctx context.Context) ([]*TariffPlan, error)
	GetByCode(ctx context.Context, code string) (*TariffPlan, error)
	Create(ctx context.Context, plan *TariffPlan) (*TariffPlan, error)
	Update(ctx context.Context, plan *TariffPlan) (*TariffPlan, error)
	Delete(ctx context.Context, id int64) error
}
