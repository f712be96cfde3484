// The worker binary runs notification dispatch on its own, for
// deployments that scale delivery separately from the API. It is
// configured purely from the environment.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/mamacare/appointment-api/internal/config"
	"github.com/mamacare/appointment-api/internal/repository/postgres"
	notificationservice "github.com/mamacare/appointment-api/internal/service/notification"
	"github.com/mamacare/appointment-api/pkg/logger"
	redisbroker "github.com/mamacare/appointment-api/pkg/messaging/redis"
	"github.com/mamacare/appointment-api/pkg/metrics"
	"github.com/mamacare/appointment-api/pkg/worker"
)

type workerConfig struct {
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseUser     string `envconfig:"DATABASE_USER" required:"true"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseName     string `envconfig:"DATABASE_NAME" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	FCMEndpoint  string `envconfig:"FCM_ENDPOINT" default:"https://fcm.googleapis.com/fcm/send"`
	FCMServerKey string `envconfig:"FCM_SERVER_KEY"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	BatchSize           int `envconfig:"NOTIFIER_BATCH_SIZE" default:"50"`
	PollIntervalSeconds int `envconfig:"NOTIFIER_POLL_INTERVAL_SECONDS" default:"5"`
	MaxRetries          int `envconfig:"NOTIFIER_MAX_RETRIES" default:"3"`
	RetryDelaySeconds   int `envconfig:"NOTIFIER_RETRY_DELAY_SECONDS" default:"5"`

	HealthPort string `envconfig:"HEALTH_PORT" default:"8081"`
}

func main() {
	_ = godotenv.Load()

	log := logger.NewLogger(nil)

	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err, "failed to load worker config")
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("appointment_worker")

	notificationRepo := postgres.NewNotificationRepository(db)
	deviceTokenRepo := postgres.NewDeviceTokenRepository(db)

	push := notificationservice.NewFCMGateway(notificationservice.FCMConfig{
		Endpoint:  cfg.FCMEndpoint,
		ServerKey: cfg.FCMServerKey,
	}, deviceTokenRepo, log)
	email := notificationservice.NewEmailGateway(notificationservice.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	notifier := worker.NewNotifier(worker.Config{
		BatchSize:    cfg.BatchSize,
		PollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, notificationRepo, push, email, broker, log, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go serveHealth(ctx, cfg.HealthPort, log)

	notifier.Start(ctx)
}

func serveHealth(ctx context.Context, port string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(err, "health endpoint failed")
	}
}
