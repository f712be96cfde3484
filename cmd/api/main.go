package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mamacare/appointment-api/internal/config"
	"github.com/mamacare/appointment-api/internal/controller"
	appointmenthandler "github.com/mamacare/appointment-api/internal/handler/appointment"
	devicehandler "github.com/mamacare/appointment-api/internal/handler/device"
	doctorhandler "github.com/mamacare/appointment-api/internal/handler/doctor"
	riskhandler "github.com/mamacare/appointment-api/internal/handler/risk"
	"github.com/mamacare/appointment-api/internal/repository/postgres"
	"github.com/mamacare/appointment-api/internal/router"
	appointmentservice "github.com/mamacare/appointment-api/internal/service/appointment"
	"github.com/mamacare/appointment-api/internal/service/directory"
	notificationservice "github.com/mamacare/appointment-api/internal/service/notification"
	riskservice "github.com/mamacare/appointment-api/internal/service/risk"
	"github.com/mamacare/appointment-api/pkg/auth"
	"github.com/mamacare/appointment-api/pkg/logger"
	redisbroker "github.com/mamacare/appointment-api/pkg/messaging/redis"
	"github.com/mamacare/appointment-api/pkg/metrics"
	"github.com/mamacare/appointment-api/pkg/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("appointment_api")

	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	deviceTokenRepo := postgres.NewDeviceTokenRepository(db)

	directorySvc := directory.NewService(doctorRepo,
		time.Duration(cfg.Directory.CacheTTLSeconds)*time.Second, log)
	notifierSvc := notificationservice.NewService(notificationRepo, m, log)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, directorySvc, notifierSvc, m, log)
	riskSvc := riskservice.NewService(log)

	registry := controller.NewRegistry(appointmentSvc,
		time.Duration(cfg.Controllers.CacheTTLSeconds)*time.Second)

	authSvc := auth.NewService(cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	engine := router.New(router.Options{
		DB:             db,
		Auth:           authSvc,
		Logger:         log,
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		Appointments:   appointmenthandler.NewHandler(registry, appointmentSvc),
		Doctors:        doctorhandler.NewHandler(directorySvc),
		Devices:        devicehandler.NewHandler(deviceTokenRepo),
		Risk:           riskhandler.NewHandler(riskSvc),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notification dispatch runs in-process; the standalone worker binary
	// covers deployments that scale dispatch separately.
	push := notificationservice.NewFCMGateway(notificationservice.FCMConfig{
		Endpoint:  cfg.FCM.Endpoint,
		ServerKey: cfg.FCM.ServerKey,
	}, deviceTokenRepo, log)
	email := notificationservice.NewEmailGateway(notificationservice.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	notifier := worker.NewNotifier(worker.Config{
		BatchSize:    cfg.Notifier.BatchSize,
		PollInterval: cfg.Notifier.PollInterval(),
		MaxRetries:   cfg.Notifier.MaxRetries,
		RetryDelay:   cfg.Notifier.RetryDelay(),
	}, notificationRepo, push, email, broker, log, m)
	go notifier.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "graceful shutdown failed")
		os.Exit(1)
	}
}
