package app

import (
	"time"

	"github.com/e-terminus/core/internal/middleware"
	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/modules/auth/auth"
	"github.com/e-terminus/core/internal/modules/auth/user"
	"github.com/e-terminus/core/internal/modules/booking"
	"github.com/e-terminus/core/internal/modules/operator"
	"github.com/e-terminus/core/internal/modules/payment"
	"github.com/e-terminus/core/internal/modules/review"
	"github.com/e-terminus/core/internal/modules/schedule"
	pkgmail "github.com/e-terminus/core/internal/pkg/mail"
	"github.com/e-terminus/core/internal/pkg/ratelimit"
	pkgredis "github.com/e-terminus/core/internal/pkg/redis"
	"github.com/e-terminus/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

var processStart = time.Now()

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	cfg := a.cfg
	logger := a.logger

	authMW := middleware.Auth(db)
	staffMW := middleware.Auth(db, models.RoleOperator, models.RoleAdmin)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{
			"status": "ok",
			"uptime": time.Since(processStart).Round(time.Second).String(),
		})
	})

	api := r.Group(apiPrefix)

	// Shared services
	mailer := pkgmail.New(cfg.Mail)
	loginLimiter := ratelimit.NewLoginLimiter(rc.Raw())
	gateway := payment.NewGateway(cfg.Payment)
	refPrefix := cfg.Payment.Prefix()

	authSvc := auth.NewService(db, logger, loginLimiter, mailer, cfg)
	auth.NewHandler(authSvc, cfg, rc.Raw(), logger).RegisterRoutes(api, authMW)

	user.NewHandler(user.NewService(db, logger)).RegisterRoutes(api, authMW)

	schedule.NewHandler(schedule.NewService(db, logger)).RegisterRoutes(api, staffMW)
	operator.NewHandler(operator.NewService(db, logger)).RegisterRoutes(api, nil)
	review.NewHandler(review.NewService(db, logger)).RegisterRoutes(api, authMW)

	booking.NewHandler(booking.NewService(db, logger, gateway, refPrefix)).RegisterRoutes(api, authMW)
	payment.NewHandler(payment.NewService(db, logger, refPrefix)).RegisterRoutes(api, nil)
}
