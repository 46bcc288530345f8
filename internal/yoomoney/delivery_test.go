package yoomoney

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

func newTestWebhook(t *testing.T) (*WebhookHandler, *stubLifecycle) {
	t.Helper()

	svc, lifecycle, _, _ := newTestApplier(t)
	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	return NewWebhookHandler(svc, zl), lifecycle
}

func postForm(t *testing.T, h *WebhookHandler, data map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	for k, v := range data {
		form.Set(k, v)
	}

	req := httptest.NewRequest("POST", "/yoomoney", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestWebhookSuccess(t *testing.T) {
	h, lifecycle := newTestWebhook(t)

	rec := postForm(t, h, validPayload(time.Now()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	require.Len(t, lifecycle.renews, 1)
}

func TestWebhookDuplicateStillSuccess(t *testing.T) {
	h, lifecycle := newTestWebhook(t)
	data := validPayload(time.Now())

	require.Equal(t, http.StatusOK, postForm(t, h, data).Code)

	rec := postForm(t, h, data)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	require.Len(t, lifecycle.renews, 1)
}

func TestWebhookBadSignature(t *testing.T) {
	h, _ := newTestWebhook(t)

	data := validPayload(time.Now())
	data["sha1_hash"] = "0000000000000000000000000000000000000000"

	rec := postForm(t, h, data)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid signature")
}

func TestWebhookBadLabel(t *testing.T) {
	h, _ := newTestWebhook(t)

	data := map[string]string{
		"notification_type": "p2p-incoming",
		"operation_id":      "op-bad-label",
		"amount":            "500.00",
		"currency":          "643",
		"datetime":          time.Now().UTC().Format(time.RFC3339),
		"sender":            "41001000000000",
		"codepro":           "false",
		"label":             "wrong_format",
	}
	data["sha1_hash"] = signPayload(data, testSecret)

	rec := postForm(t, h, data)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookUnknownAccount(t *testing.T) {
	h, _ := newTestWebhook(t)

	data := map[string]string{
		"notification_type": "p2p-incoming",
		"operation_id":      "op-404",
		"amount":            "500.00",
		"currency":          "643",
		"datetime":          time.Now().UTC().Format(time.RFC3339),
		"sender":            "41001000000000",
		"codepro":           "false",
		"label":             "user_999_30",
	}
	data["sha1_hash"] = signPayload(data, testSecret)

	rec := postForm(t, h, data)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookTransientFailure(t *testing.T) {
	svc, lifecycle, _, _ := newTestApplier(t)
	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	h := NewWebhookHandler(svc, zl)

	lifecycle.err = ports.Transient(errors.New("db is down"))

	rec := postForm(t, h, validPayload(time.Now()))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "temporary failure")
}
