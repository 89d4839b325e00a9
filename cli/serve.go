package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gunalchandran/grocery-backend/auth"
	orderControllers "github.com/gunalchandran/grocery-backend/controllers/order"
	"github.com/gunalchandran/grocery-backend/events"
	"github.com/gunalchandran/grocery-backend/middleware"
	"github.com/gunalchandran/grocery-backend/notify"
	"github.com/gunalchandran/grocery-backend/routes"
	"github.com/gunalchandran/grocery-backend/services"
	"github.com/gunalchandran/grocery-backend/telemetry"
	"github.com/gunalchandran/grocery-backend/uploads"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

Order events are delivered to the delivery notifier, the admin websocket
feed and, when kafka.brokers is set, a Kafka topic. When
uploads.backup_dir is set the uploads directory is backed up daily.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, logger := opts.Config, opts.Logger

	level, _ := cfg.Log.SlogLevel()
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := opts.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Warn("Failed to close database", "err", err)
		}
	}()
	logger.Info("Connected to database", "database", cfg.Mongo.Database)

	images, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Server.PublicBaseURL, "/uploads")
	if err != nil {
		return err
	}
	profiles, err := uploads.NewStore(cfg.Uploads.ProfileDir, cfg.Server.PublicBaseURL, "/static/profiles")
	if err != nil {
		return err
	}

	bus := events.NewBus(logger)
	defer bus.Close()
	hub := orderControllers.NewHub(logger)
	defer hub.Close()

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.SMTP.Enabled() {
		sender = notify.NewSMTPSender(cfg.SMTP.Server, cfg.SMTP.Port, cfg.SMTP.Address, cfg.SMTP.Password)
	}
	subscribers := map[string]events.Handler{
		"delivery-notifier": notify.NewDeliveryNotifier(sender, logger).Handle,
		"order-feed":        hub.Broadcast,
	}
	if len(cfg.Kafka.Brokers) > 0 {
		forwarder := events.NewKafkaForwarder(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer forwarder.Close()
		subscribers["kafka-forwarder"] = forwarder.Forward
		logger.Info("Forwarding order events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	for name, h := range subscribers {
		if err := bus.Subscribe(ctx, name, h); err != nil {
			return err
		}
	}

	if cfg.Uploads.BackupDir != "" {
		go uploads.RunDailyBackup(ctx, images.Dir(), cfg.Uploads.BackupDir, cfg.BackupRetention(), cfg.Uploads.BackupHour)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL())
	router := routes.NewRouter(routes.Deps{
		Store:          db,
		Catalog:        services.NewCatalog(db, images),
		Cart:           services.NewCart(db, db),
		Orders:         services.NewOrders(db, db, bus, logger),
		Accounts:       services.NewAccounts(db, tokens, profiles),
		Tokens:         tokens,
		AdminAPIKey:    cfg.Auth.AdminAPIKey,
		Hub:            hub,
		Latency:        middleware.NewLatencyRecorder(),
		Logger:         logger,
		UploadsDir:     images.Dir(),
		ProfilesDir:    profiles.Dir(),
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		Started:        time.Now(),
	})

	var handler http.Handler = router
	if cfg.Telemetry.Tracing {
		shutdownTracing, err := telemetry.SetupTracing(cfg.Telemetry.ServiceName, os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("Failed to flush traces", "err", err)
			}
		}()
		handler = telemetry.WrapHandler(handler, cfg.Telemetry.ServiceName)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
