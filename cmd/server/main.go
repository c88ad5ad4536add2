package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/servicedesk/backend/internal/config"
	"github.com/servicedesk/backend/internal/dispatch"
	"github.com/servicedesk/backend/internal/handler"
	"github.com/servicedesk/backend/internal/logging"
	"github.com/servicedesk/backend/internal/metrics"
	"github.com/servicedesk/backend/internal/notify"
	"github.com/servicedesk/backend/internal/repository"
	"github.com/servicedesk/backend/internal/service"
	"github.com/servicedesk/backend/pkg/auth"
	"github.com/servicedesk/backend/pkg/sendgrid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("servicedesk", "INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup("servicedesk", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, cfg.MySQLDSN)
	if err != nil {
		logging.Fatal("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer store.Close()
	slog.Info("store ready", "driver", cfg.StoreDriver)

	// メール送信（NOTIFIER=log の場合は送信せずログ出力のみ）
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Notifier == "sendgrid" {
		if cfg.SendGridAPIKey == "" {
			slog.Warn("SENDGRID_API_KEY is not set, admin emails will fail")
		}
		notifier = notify.NewSendGridNotifier(sendgrid.NewClient(cfg.SendGridAPIKey), cfg.SenderEmail)
	}
	adminNotifier := notify.NewAdminNotifier(notifier, cfg.AdminEmail)

	dispatcher, closeQueue := newDispatcher(ctx, stop, cfg, adminNotifier)

	admin, err := service.NewAdminCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		logging.Fatal("invalid admin credentials", "error", err)
	}
	authService := service.NewAuthService(admin, auth.NewSigner(cfg.JWTSecret))
	submissionService := service.NewSubmissionService(store.Submissions, dispatcher, adminNotifier)

	router := handler.NewRouter(handler.RouterConfig{
		Base:          handler.New(store.DB, cfg.FrontendURL),
		Submissions:   handler.NewSubmissionHandler(submissionService),
		Auth:          handler.NewAuthHandler(authService),
		Authenticator: authService,
		Metrics:       metrics.Handler(),
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "dispatch_mode", cfg.DispatchMode, "notifier", cfg.Notifier)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Warn("in-flight notifications abandoned", "error", err)
	}
	closeQueue()
}

// newDispatcher は DISPATCH_MODE に応じて通知のディスパッチャを組み立てる。
// amqp の場合は同一プロセス内でワーカーも起動し、接続が切れたら shutdown を呼ぶ
func newDispatcher(ctx context.Context, shutdown context.CancelFunc, cfg *config.Config, notifier *notify.AdminNotifier) (*dispatch.AsyncDispatcher, func()) {
	if cfg.DispatchMode != "amqp" {
		return dispatch.NewAsync("async", notifier.NotifySubmission), func() {}
	}

	broker, err := dispatch.Dial(cfg.RabbitMQURL, cfg.NotifyQueue)
	if err != nil {
		logging.Fatal("failed to connect to rabbitmq", "error", err)
	}
	lost := broker.Lost()
	queue := dispatch.NewQueue(broker.Publisher(), cfg.NotifyQueue)
	worker := dispatch.NewWorker(broker.Consumer(), cfg.NotifyQueue, notifier)

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Run(workerCtx); err != nil {
			slog.Error("notification worker stopped", "error", err)
			shutdown()
		}
	}()
	go func() {
		select {
		case err := <-lost:
			slog.Error("rabbitmq connection lost, shutting down", "error", err)
			shutdown()
		case <-workerCtx.Done():
		}
	}()
	slog.Info("notification queue ready", "queue", cfg.NotifyQueue)

	return dispatch.NewAsync("enqueue", queue.Publish), func() {
		cancel()
		<-done
		if err := broker.Close(); err != nil {
			slog.Warn("rabbitmq close failed", "error", err)
		}
	}
}
