// Package router assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the authenticated v1 API group.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appointmenthandler "github.com/mamacare/appointment-api/internal/handler/appointment"
	devicehandler "github.com/mamacare/appointment-api/internal/handler/device"
	doctorhandler "github.com/mamacare/appointment-api/internal/handler/doctor"
	healthhandler "github.com/mamacare/appointment-api/internal/handler/health"
	riskhandler "github.com/mamacare/appointment-api/internal/handler/risk"
	"github.com/mamacare/appointment-api/internal/middleware"
	"github.com/mamacare/appointment-api/pkg/auth"
	"github.com/mamacare/appointment-api/pkg/logger"
)

type Options struct {
	DB             *sqlx.DB
	Auth           *auth.Service
	Logger         *logger.Logger
	RequestTimeout time.Duration
	RateLimit      int
	RateBurst      int

	Appointments *appointmenthandler.Handler
	Doctors      *doctorhandler.Handler
	Devices      *devicehandler.Handler
	Risk         *riskhandler.Handler
}

func New(opts Options) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.RateLimit(opts.RateLimit, opts.RateBurst))

	healthhandler.NewHandler(opts.DB).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(opts.Auth))
	{
		opts.Appointments.RegisterRoutes(v1)
		opts.Doctors.RegisterRoutes(v1)
		opts.Devices.RegisterRoutes(v1)
		opts.Risk.RegisterRoutes(v1)
	}

	return r
}
