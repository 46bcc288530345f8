package domain

import (
	"context"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type TariffService struct {
	repo ports.TariffRepo
}

func NewTariffService(repo ports.TariffRepo) ports.TariffService {
	return &TariffService{repo: repo}
}

func (s *TariffService) ListAll(ctx context.Context) ([]*ports.TariffPlan, error) {
	return s.repo.ListAll(ctx)
}

func (s *TariffService) GetByCode(ctx context.Context, code string) (*ports.TariffPlan, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *TariffService) Create(ctx context.Context, plan *ports.TariffPlan) (*ports.TariffPlan, error) {
	return s.repo.Create(ctx, plan)
}

func (s *TariffService) Update(ctx context.Context, plan *ports.TariffPlan) (*ports.TariffPlan, error) {
	return s.repo.Update(ctx, plan)
}

func (s *TariffService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
