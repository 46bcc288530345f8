package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

// XUIGateway — клиент панели 3X-UI: создание клиента в inbound,
// включение/выключение по uuid. Сессия через cookie после /login.
type XUIGateway struct {
	httpClient *http.Client
	baseURL    string
	inboundID  int
}

func NewXUIGateway(baseURL string, inboundID int) *XUIGateway {
	jar, _ := cookiejar.New(nil)
	return &XUIGateway{
		httpClient: &http.Client{Timeout: 10 * time.Second, Jar: jar},
		baseURL:    strings.TrimRight(baseURL, "/"),
		inboundID:  inboundID,
	}
}

type xuiResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

func (g *XUIGateway) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", os.Getenv("XUI_USERNAME"))
	form.Set("password", os.Getenv("XUI_PASSWORD"))

	req, err := http.NewRequestWithContext(
		ctx, "POST", g.baseURL+"/login",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("xui login: %w", err)
	}
	defer resp.Body.Close()

	var out xuiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("xui login decode: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("xui login rejected: %s", out.Msg)
	}
	return nil
}

func (g *XUIGateway) post(ctx context.Context, path string, payload any) error {
	body, _ := json.Marshal(payload)

	do := func() (*xuiResponse, error) {
		req, err := http.NewRequestWithContext(
			ctx, "POST", g.baseURL+path, bytes.NewBuffer(body),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, nil // сессия протухла
		}

		var out xuiResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("xui decode %s: %s", path, string(raw))
		}
		return &out, nil
	}

	out, err := do()
	if err != nil {
		return err
	}
	if out == nil {
		// перелогин и одна повторная попытка
		if err := g.login(ctx); err != nil {
			return err
		}
		out, err = do()
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("xui unauthorized after relogin")
		}
	}
	if !out.Success {
		return fmt.Errorf("xui %s failed: %s", path, out.Msg)
	}
	return nil
}

func (g *XUIGateway) Create(ctx context.Context, accountID int64) (string, string, error) {
	ref := uuid.NewString()

	settings, _ := json.Marshal(map[string]any{
		"clients": []map[string]any{{
			"id":     ref,
			"email":  fmt.Sprintf("user_%d", accountID),
			"enable": true,
		}},
	})

	err := g.post(ctx, "/panel/api/inbounds/addClient", map[string]any{
		"id":       g.inboundID,
		"settings": string(settings),
	})
	if err != nil {
		return "", "", err
	}

	host := os.Getenv("VPN_SERVER_HOST")
	cfg := fmt.Sprintf("vless://%s@%s:443?security=tls#user_%d", ref, host, accountID)

	log.Printf("[xui] created client ref=%s for tg=%d", ref, accountID)
	return ref, cfg, nil
}

func (g *XUIGateway) setEnabled(ctx context.Context, ref string, enabled bool) error {
	settings, _ := json.Marshal(map[string]any{
		"clients": []map[string]any{{
			"id":     ref,
			"enable": enabled,
		}},
	})

	return g.post(ctx, "/panel/api/inbounds/updateClient/"+ref, map[string]any{
		"id":       g.inboundID,
		"settings": string(settings),
	})
}

func (g *XUIGateway) Deactivate(ctx context.Context, ref string) error {
	if err := g.setEnabled(ctx, ref, false); err != nil {
		return err
	}
	log.Printf("[xui] deactivated ref=%s", ref)
	return nil
}

func (g *XUIGateway) Reactivate(ctx context.Context, ref string) error {
	if err := g.setEnabled(ctx, ref, true); err != nil {
		return err
	}
	log.Printf("[xui] reactivated ref=%s", ref)
	return nil
}

var _ ports.ProvisioningGateway = (*XUIGateway)(nil)
