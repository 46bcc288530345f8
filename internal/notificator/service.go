package notificator

import "context"

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	return s.infra.Notify(ctx, err, details)
}

func (s *Service) UserNotify(ctx context.Context, chatID int64, text string) error {
	return s.infra.UserNotify(ctx, chatID, text)
}
