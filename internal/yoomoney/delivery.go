package yoomoney

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type WebhookHandler struct {
	service *Service
	log     *logger.ZapLogger
}

func NewWebhookHandler(service *Service, log *logger.ZapLogger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

// POST /yoomoney
// 200 — применено (включая дубликат), 400 — не прошло проверку,
// 404 — аккаунт не зарегистрирован, 500 — временная ошибка (провайдер ретраит)
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	data := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		data[k] = r.PostForm.Get(k)
	}

	err := h.service.Apply(r.Context(), data)

	var verr *VerificationError
	var terr *ports.TransientError

	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})

	case errors.As(err, &verr):
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "notification rejected: " + verr.Reason,
			Service: "yoomoney",
		})
		http.Error(w, verr.Reason, http.StatusBadRequest)

	case errors.Is(err, ErrUnknownAccount):
		http.Error(w, "user not found", http.StatusNotFound)

	case errors.As(err, &terr):
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "notification processing failed",
			Service: "yoomoney",
			Error:   err,
		})
		http.Error(w, "temporary failure", http.StatusInternalServerError)

	default:
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "unexpected webhook error",
			Service: "yoomoney",
			Error:   err,
		})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
