package yoomoney

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// допуск расхождения часов с провайдером
const maxClockSkew = 300 * time.Second

// Verifier — проверка HTTP-уведомлений YooMoney.
// Протокол: sha1_hash = HMAC-SHA1(secret, check_string), где check_string —
// фиксированный порядок полей уведомления через "&".
type Verifier struct {
	secret string

	now func() time.Time
}

// NewVerifier — пустой secret это ошибка конфигурации:
// без него любое уведомление "проходит" проверку с пустым ключом
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("notification secret is empty")
	}
	return &Verifier{secret: secret, now: time.Now}, nil
}

// VerifySignature — отсутствующие поля считаются пустыми строками,
// сравнение дайджестов — constant-time
func (v *Verifier) VerifySignature(data map[string]string) error {
	fields := []string{
		data["notification_type"],
		data["operation_id"],
		data["amount"],
		data["currency"],
		data["datetime"],
		data["sender"],
		data["codepro"],
		v.secret,
		data["label"],
	}
	checkString := strings.Join(fields, "&")

	mac := hmac.New(sha1.New, []byte(v.secret))
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(data["sha1_hash"])) {
		return verificationFailed("invalid signature")
	}
	return nil
}

// VerifyFreshness — |now - datetime| не больше 300 секунд.
// Невалидный timestamp — отказ, не пропуск.
func (v *Verifier) VerifyFreshness(data map[string]string) error {
	ts, err := time.Parse(time.RFC3339, data["datetime"])
	if err != nil {
		return verificationFailed("unparseable datetime")
	}

	diff := v.now().UTC().Sub(ts)
	if diff < 0 {
		diff = -diff
	}
	if diff > maxClockSkew {
		return verificationFailed("notification is stale")
	}
	return nil
}

// ParseLabel — label формата user_<account_id>_<tariff_days>.
// Это единственная привязка платежа к аккаунту; сам по себе label
// не авторизует транзакцию — авторизует HMAC над полями провайдера.
func ParseLabel(label string) (int64, int, error) {
	parts := strings.Split(label, "_")
	if len(parts) != 3 || parts[0] != "user" {
		return 0, 0, verificationFailed("invalid label format")
	}

	accountID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, verificationFailed("invalid label account id")
	}

	days, err := strconv.Atoi(parts[2])
	if err != nil || days <= 0 {
		return 0, 0, verificationFailed("invalid label tariff days")
	}

	return accountID, days, nil
}
