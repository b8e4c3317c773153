package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/casaguide/concierge/internal/dangerzone"
	"github.com/casaguide/concierge/internal/disclosure"
	"github.com/casaguide/concierge/internal/http/handlers"
	internalmw "github.com/casaguide/concierge/internal/http/middleware"
	"github.com/casaguide/concierge/internal/platform/mailer"
	"github.com/casaguide/concierge/internal/proxy"
	"github.com/casaguide/concierge/internal/repo/postgres"
	"github.com/casaguide/concierge/internal/service"
	redisstore "github.com/casaguide/concierge/internal/store/redis"
	"github.com/casaguide/concierge/pkg/clock"
	"github.com/casaguide/concierge/pkg/config"
	"github.com/casaguide/concierge/pkg/database"
	"github.com/casaguide/concierge/pkg/events"
	"github.com/casaguide/concierge/pkg/logger"
	"github.com/casaguide/concierge/pkg/metrics"
	mw "github.com/casaguide/concierge/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rds, err := redisstore.Connect(cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rds.Close()

	var bus events.EventBus
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		bus = natsBus
	} else {
		bus = events.NopBus{}
	}
	defer bus.Close()

	loc, err := time.LoadLocation(cfg.Stay.Timezone)
	if err != nil {
		logger.Error("Invalid timezone", "timezone", cfg.Stay.Timezone, "error", err)
		os.Exit(1)
	}

	clk := clock.FromDemoOverride(cfg.Stay.DemoTime)
	if cfg.Stay.DemoTime != "" {
		logger.Warn("Demo clock override active", "demo_time", cfg.Stay.DemoTime)
	}

	m := metrics.New("concierge")

	// Repositories
	reservationRepo := postgres.NewReservationRepo(pool)
	templateRepo := postgres.NewTemplateRepo(pool)
	adminRepo := postgres.NewAdminRepo(pool)

	// Mail
	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, "Casa Guide", cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	}

	// Services
	policy := disclosure.New(rds.FlagStore(), bus)
	reservationService := service.NewReservationService(reservationRepo, templateRepo, bus, mail, cfg)
	stayService := service.NewStayService(clk, loc, policy, m)
	authService := service.NewAuthService(adminRepo, cfg)
	dangerZone := service.NewDangerZoneManager(clk, dangerzone.TimerScheduler{}, cfg.Stay.ConfirmWindow, reservationService, m)
	defer dangerZone.Close()

	// Upstream clients
	gemini := proxy.NewGeminiClient(cfg.Gemini)
	tts := proxy.NewTTSClient(cfg.TTS)
	mercadoPago := proxy.NewMercadoPagoClient(cfg.MercadoPago)

	h := handlers.New(authService, reservationService, stayService, dangerZone, templateRepo, gemini, tts, mercadoPago, m)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("concierge"))
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Use(mw.Metrics(m))

	r.Post("/auth/login", h.Login)

	r.Route("/guest/stays/{token}", func(r chi.Router) {
		r.Get("/", h.GetGuestStay)
		r.Post("/reveal", h.RevealAccess)
		r.Post("/feedback", h.SubmitFeedback)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(internalmw.RequireAdmin([]byte(cfg.Auth.JWTSecret)))

		r.Route("/reservations", func(r chi.Router) {
			r.With(mw.Idempotency(rds.KVStore())).Post("/", h.CreateReservation)
			r.Get("/", h.ListReservations)
			r.Get("/{id}", h.GetReservation)
			r.Patch("/{id}", h.UpdateReservation)
			r.Delete("/{id}", h.DeleteReservation)
			r.Post("/{id}/deactivate", h.Deactivate)
			r.Post("/{id}/reactivate", h.Reactivate)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", h.CreateTemplate)
			r.Get("/", h.ListTemplates)
			r.Delete("/{id}", h.DeleteTemplate)
		})
	})

	// Provider proxies; chi answers non-POST with 405.
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/translate", h.Translate)
		r.Post("/tts", h.TTS)
		r.Post("/create-payment", h.CreatePayment)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down concierge API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting concierge API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
