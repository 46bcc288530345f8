package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
)

type EntitlementHandler struct {
	service ports.LifecycleService
	log     *logger.ZapLogger
}

func NewEntitlementHandler(service ports.LifecycleService, log *logger.ZapLogger) *EntitlementHandler {
	return &EntitlementHandler{service: service, log: log}
}

// GET /subscriptions/{account_id}
func (h *EntitlementHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "account_id")

	accountID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid account_id", http.StatusBadRequest)
		return
	}

	e, err := h.service.GetEffectiveStatus(r.Context(), accountID)
	if err == ports.ErrEntitlementNotFound {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "get status failed", Error: err})
		http.Error(w, "failed to get status: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(e)
}

// GET /subscriptions
func (h *EntitlementHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "list failed", Error: err})
		http.Error(w, "failed to list subscriptions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
