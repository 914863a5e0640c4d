package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authplane/internal/audit"
	auditrepo "authplane/internal/audit/repository"
	authsvc "authplane/internal/auth/service"
	"authplane/internal/config"
	"authplane/internal/db"
	"authplane/internal/mfa"
	mfarepo "authplane/internal/mfa/repository"
	mfasvc "authplane/internal/mfa/service"
	"authplane/internal/security"
	"authplane/internal/server"
	sessionrepo "authplane/internal/session/repository"
	sessionsvc "authplane/internal/session/service"
	"authplane/internal/telemetry"
	telemetryotel "authplane/internal/telemetry/otel"
	userrepo "authplane/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "authplane", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	hasher := security.NewHasher(cfg.BcryptCost, cfg.FailureSleep())
	totpEngine := mfa.NewTotpEngine(cfg.TOTPIssuer)
	tx := db.NewRunner(conn)

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	mfaConfigs := mfarepo.NewPostgresRepository(conn)
	auditLogs := auditrepo.NewPostgresRepository(conn)

	sessionService := sessionsvc.NewService(sessions, users, tx, cfg.SessionLifetime())
	mfaService := mfasvc.NewService(mfaConfigs, hasher, totpEngine, tx, cfg.RecoveryCodeCount)
	authService := authsvc.NewService(users, mfaConfigs, sessionService, mfaService, hasher, tx)

	metrics, err := server.NewMetrics(providers.MeterProvider.Meter("authplane.server"))
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	router := server.NewRouter(server.Deps{
		Auth:           authService,
		Sessions:       sessionService,
		Mfa:            mfaService,
		Audit:          audit.NewLogger(auditLogs),
		Emitter:        telemetryotel.NewEventEmitter(providers.LoggerProvider),
		Metrics:        metrics,
		TracerProvider: providers.TracerProvider,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async telemetry emits finish before the exporters go.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
