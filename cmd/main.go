package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vpn_access_bot/internal/delivery"
	"github.com/Vovarama1992/vpn_access_bot/internal/domain"
	"github.com/Vovarama1992/vpn_access_bot/internal/infra"
	"github.com/Vovarama1992/vpn_access_bot/internal/notificator"
	"github.com/Vovarama1992/vpn_access_bot/internal/ports"
	"github.com/Vovarama1992/vpn_access_bot/internal/telegram"
	"github.com/Vovarama1992/vpn_access_bot/internal/yoomoney"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	notificationSecret := os.Getenv("YOOMONEY_NOTIFICATION_SECRET")
	if notificationSecret == "" {
		log.Fatal("YOOMONEY_NOTIFICATION_SECRET is not set")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_TOKEN is not set")
	}

	trialDays := 7
	if v := os.Getenv("TRIAL_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid TRIAL_DAYS: %q", v)
		}
		trialDays = n
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}
	defer db.Close()

	if err := infra.InitSchema(ctx, db); err != nil {
		log.Fatalf("schema init failed: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var gateway ports.ProvisioningGateway
	if xuiURL := os.Getenv("XUI_API_URL"); xuiURL != "" {
		inboundID := 1
		if v := os.Getenv("XUI_INBOUND_ID"); v != "" {
			inboundID, _ = strconv.Atoi(v)
		}
		gateway = infra.NewXUIGateway(xuiURL, inboundID)
	} else {
		log.Printf("[main] XUI_API_URL is not set, using in-memory stub gateway")
		gateway = infra.NewStubGateway()
	}

	paymentProvider := infra.NewYooMoneyProvider()

	// =========================================================================
	// REPOSITORIES
	// =========================================================================

	entitlementRepo := infra.NewEntitlementRepo(db)
	appliedRepo := infra.NewAppliedPaymentsRepo(db)
	tariffRepo := infra.NewTariffRepo(db)

	// =========================================================================
	// NOTIFICATIONS
	// =========================================================================

	var adminChatID int64
	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		adminChatID, _ = strconv.ParseInt(v, 10, 64)
	}

	notifyInfra := notificator.NewInfra(nil, adminChatID)
	notifyService := notificator.NewService(notifyInfra)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	lifecycleService := domain.NewLifecycleService(
		entitlementRepo,
		gateway,
		notifyService,
		trialDays,
	)
	tariffService := domain.NewTariffService(tariffRepo)

	verifier, err := yoomoney.NewVerifier(notificationSecret)
	if err != nil {
		log.Fatalf("verifier init failed: %v", err)
	}

	applier := yoomoney.NewService(
		verifier,
		entitlementRepo,
		appliedRepo,
		lifecycleService,
		notifyService,
	)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	botApp := telegram.NewBotApp(
		lifecycleService,
		tariffService,
		paymentProvider,
	)

	if err := botApp.InitBot(); err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	notifyInfra.SetBot(botApp.GetBot())

	go botApp.Run()

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// HANDLERS
	webhookHandler := yoomoney.NewWebhookHandler(applier, zl)
	entHandler := delivery.NewEntitlementHandler(lifecycleService, zl)
	tariffHandler := delivery.NewTariffHandler(tariffService)

	// ROUTES
	delivery.RegisterRoutes(
		r,
		webhookHandler,
		entHandler,
		tariffHandler,
		adminToken,
	)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "vpn_access_bot",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
