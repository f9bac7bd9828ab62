package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubbank/rubbank-api/internal/config"
	"github.com/rubbank/rubbank-api/internal/handler"
	"github.com/rubbank/rubbank-api/internal/logging"
	"github.com/rubbank/rubbank-api/internal/mail"
	"github.com/rubbank/rubbank-api/internal/middleware"
	"github.com/rubbank/rubbank-api/internal/repository"
	"github.com/rubbank/rubbank-api/internal/scheduler"
	"github.com/rubbank/rubbank-api/internal/service"
	"github.com/rubbank/rubbank-api/internal/service/transfer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("rubbank-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accounts := repository.NewAccountRepository(db)
	transfers := repository.NewTransferRepository(db)
	users := repository.NewUserRepository(db)

	mailer := mail.NewSMTPSender(mail.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	})

	loc := cfg.Location()
	ledger := transfer.NewService(db, accounts, transfers, loc)
	gate := service.NewSecurityGate(accounts)
	userSvc := service.NewUserService(db, users, accounts, mailer)

	sweeper := scheduler.New(ledger, logger, cfg.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, cfg.JWTExpiry())
	userHandler := handler.NewUserHandler(userSvc)
	accountHandler := handler.NewAccountHandler(accounts)
	transferHandler := handler.NewTransferHandler(ledger, gate, accounts, loc)
	healthHandler := handler.NewHealthHandler(db)

	authMW := middleware.Auth(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.HandleFunc("POST /api/v1/onboarding", userHandler.Onboard)
	mux.HandleFunc("POST /api/v1/login", authHandler.Login)
	mux.Handle("POST /api/v1/users/verify", authMW(http.HandlerFunc(userHandler.Verify)))
	mux.Handle("PATCH /api/v1/users/password", authMW(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("GET /api/v1/users/accounts", authMW(http.HandlerFunc(userHandler.ListAccounts)))
	mux.Handle("GET /api/v1/accounts/{accountId}/balance", authMW(http.HandlerFunc(accountHandler.Balance)))
	mux.Handle("POST /api/v1/accounts/{accountId}/transfers", authMW(http.HandlerFunc(transferHandler.Create)))
	mux.Handle("GET /api/v1/accounts/{accountId}/transfers", authMW(http.HandlerFunc(transferHandler.List)))
	mux.Handle("GET /api/v1/transfers/{transferId}", authMW(http.HandlerFunc(transferHandler.Get)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
