package infra

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

// StubGateway — in-memory реализация шлюза для локального запуска и тестов.
// Выдаёт uuid и vless-конфиг, как это делал старый python-прототип.
type StubGateway struct {
	mu      sync.Mutex
	enabled map[string]bool
}

func NewStubGateway() *StubGateway {
	return &StubGateway{enabled: make(map[string]bool)}
}

func (g *StubGateway) Create(ctx context.Context, accountID int64) (string, string, error) {
	host := os.Getenv("VPN_SERVER_HOST")
	if host == "" {
		host = "your_server_ip"
	}

	ref := uuid.NewString()
	cfg := fmt.Sprintf("vless://%s@%s:443?security=tls#user_%d", ref, host, accountID)

	g.mu.Lock()
	g.enabled[ref] = true
	g.mu.Unlock()

	log.Printf("[stub_gateway] created account ref=%s for tg=%d", ref, accountID)
	return ref, cfg, nil
}

func (g *StubGateway) Deactivate(ctx context.Context, ref string) error {
	g.mu.Lock()
	g.enabled[ref] = false
	g.mu.Unlock()

	log.Printf("[stub_gateway] deactivated ref=%s", ref)
	return nil
}

func (g *StubGateway) Reactivate(ctx context.Context, ref string) error {
	g.mu.Lock()
	g.enabled[ref] = true
	g.mu.Unlock()

	log.Printf("[stub_gateway] reactivated ref=%s", ref)
	return nil
}

// IsEnabled — только для проверок в тестах
func (g *StubGateway) IsEnabled(ref string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled[ref]
}

var _ ports.ProvisioningGateway = (*StubGateway)(nil)
