package ports

import "context"

// ProvisioningGateway — управление сетевым аккаунтом (3X-UI).
// Все методы безопасны при повторном вызове.
type ProvisioningGateway interface {
	Create(ctx context.Context, accountID int64) (ref string, accessConfig string, err error)
	Deactivate(ctx context.Context, ref string) error
	Reactivate(ctx context.Context, ref string) error
}
