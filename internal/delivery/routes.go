package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Vovarama1992/vpn_access_bot/internal/yoomoney"
)

func RegisterRoutes(
	r chi.Router,
	hWebhook *yoomoney.WebhookHandler,
	hEnt *EntitlementHandler,
	hTariff *TariffHandler,
	adminToken string,
) {
	// --- платёжный вебхук (без авторизации: его зовёт провайдер) ---
	r.With(
		httputil.RecoverMiddleware,
		httprate.LimitByIP(60, time.Minute),
	).Post("/yoomoney", hWebhook.Handle)

	// --- админка ---
	r.Route("/", func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware(adminToken),
		)

		// --- подписки ---
		pr.Get("/subscriptions", hEnt.ListAll)
		pr.Get("/subscriptions/{account_id}", hEnt.GetStatus)

		// --- тарифы ---
		pr.Get("/tariffs", hTariff.List)
		pr.Post("/tariffs", hTariff.Create)
		pr.Put("/tariffs/{id}", hTariff.Update)
		pr.Delete("/tariffs/{id}", hTariff.Delete)
	})
}
