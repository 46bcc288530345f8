package infra

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

const quickpayURL = "https://yoomoney.ru/quickpay/confirm.xml"

type YooMoneyProvider struct {
	httpClient *http.Client
}

func NewYooMoneyProvider() ports.PaymentProvider {
	return &YooMoneyProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreatePaymentURL — формирует Quickpay-ссылку. label кодирует аккаунт и срок,
// провайдер вернёт его в уведомлении как есть.
func (p *YooMoneyProvider) CreatePaymentURL(
	ctx context.Context,
	accountID int64,
	plan *ports.TariffPlan,
) (string, error) {

	wallet := os.Getenv("YOOMONEY_WALLET")
	if wallet == "" {
		return "", fmt.Errorf("YOOMONEY_WALLET is not set")
	}

	form := url.Values{}
	form.Set("receiver", wallet)
	form.Set("quickpay-form", "shop")
	form.Set("targets", fmt.Sprintf("Подписка на VPN (%d дней)", plan.Days))
	form.Set("paymentType", "PC")
	form.Set("sum", fmt.Sprintf("%.2f", plan.Price))
	form.Set("label", fmt.Sprintf("user_%d_%d", accountID, plan.Days))

	log.Printf("[YM] create payment url account=%d plan=%s sum=%.2f",
		accountID, plan.Code, plan.Price)

	req, err := http.NewRequestWithContext(
		ctx, "POST", quickpayURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		log.Printf("[YM] build request error: %v", err)
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[YM] http error: %v", err)
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("quickpay error status=%d", resp.StatusCode)
	}

	// после редиректов остаётся URL страницы подтверждения оплаты
	payURL := resp.Request.URL.String()
	log.Printf("[YM] payment url=%s", payURL)

	return payURL, nil
}
