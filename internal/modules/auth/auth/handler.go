package auth

import (
	"errors"

	"github.com/e-terminus/core/internal/config"
	"github.com/e-terminus/core/internal/middleware"
	"github.com/e-terminus/core/internal/pkg/response"
	sessionpkg "github.com/e-terminus/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	cfg *config.AppConfig
	rdb *redis.Client
	log *zap.Logger
}

func NewHandler(svc *Service, cfg *config.AppConfig, rdb *redis.Client, log *zap.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, rdb: rdb, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.GET("/csrf", h.csrf)
	a.POST("/register", middleware.CSRF(h.rdb), h.register)
	a.POST("/login", h.login)
	a.POST("/logout", h.logout)
	a.GET("/check", middleware.OptionalAuth(h.svc.db), h.check)
	a.GET("/verify", h.verify)
	a.POST("/resend-verification", h.resendVerification)

	a.GET("/sessions", authMW, h.listSessions)
	a.POST("/sessions/revoke-others", authMW, h.revokeOtherSessions)
}

// GET /auth/csrf
func (h *Handler) csrf(c *gin.Context) {
	token, err := middleware.IssueCSRFToken(c.Request.Context(), h.rdb)
	if err != nil {
		h.log.Error("csrf token issue failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	setCSRFCookie(c, token, h.cfg)
	response.OK(c, gin.H{"csrf_token": token})
}

// POST /auth/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			response.FieldError(c, ve.Field, ve.Message)
			return
		}
		if errors.Is(err, errDuplicateAccount) {
			response.Conflict(c, "Email or username already registered")
			return
		}
		h.log.Error("register failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Created(c, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"message":  "Registration successful, check your email to verify the account",
	})
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, u, err := h.svc.Login(c.Request.Context(), &dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		var rl *RateLimitedError
		switch {
		case errors.As(err, &rl):
			response.TooManyRequests(c, rl.RetryAfter)
		case errors.Is(err, errInvalidCredentials):
			response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, errAccountLocked):
			response.Forbidden(c, "Account is locked due to repeated failed logins")
		case errors.Is(err, errAccountUnverified):
			c.AbortWithStatusJSON(403, gin.H{
				"ok":                 0,
				"code":               403,
				"error":              "Account is not verified",
				"needs_verification": true,
			})
		default:
			h.log.Error("login failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}

	maxAge := int(sessionpkg.DefaultTTL.Seconds())
	if dto.Remember {
		maxAge = int(sessionpkg.RememberTTL.Seconds())
	}
	setAuthTokenCookie(c, token, maxAge, h.cfg)
	response.OK(c, loginResponse{Token: token, User: u.Public()})
}

// POST /auth/logout
func (h *Handler) logout(c *gin.Context) {
	if token := middleware.ExtractToken(c); token != "" {
		if err := h.svc.Logout(token); err != nil {
			h.log.Warn("logout session delete failed", zap.Error(err))
		}
	}
	clearAuthTokenCookie(c, h.cfg)
	response.OK(c, gin.H{"success": true})
}

// GET /auth/check
func (h *Handler) check(c *gin.Context) {
	if !middleware.IsAuthenticated(c) {
		response.OK(c, gin.H{"authenticated": false})
		return
	}
	response.OK(c, gin.H{
		"authenticated": true,
		"user_id":       middleware.CurrentUserID(c),
		"role":          middleware.CurrentRole(c),
	})
}

// GET /auth/verify?token=...
func (h *Handler) verify(c *gin.Context) {
	ok, err := h.svc.VerifyEmail(c.Query("token"))
	if err != nil {
		h.log.Error("email verification failed", zap.Error(err))
		renderVerifyPage(c, 500, "Something went wrong. Please try again later.")
		return
	}
	if !ok {
		renderVerifyPage(c, 400, "This verification link is invalid or has already been used.")
		return
	}
	renderVerifyPage(c, 200, "Your email has been verified. You can now log in.")
}

// POST /auth/resend-verification
func (h *Handler) resendVerification(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ResendVerification(body.Email); err != nil {
		h.log.Error("resend verification failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	// Same response whether or not the address exists.
	response.OK(c, gin.H{"message": "If the account exists and is unverified, a new email has been sent"})
}

// GET /auth/sessions
func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := sessionpkg.ListActive(h.svc.db, middleware.CurrentUserID(c))
	if err != nil {
		h.log.Error("list sessions failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	current := middleware.CurrentSessionID(c)
	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"id":         s.ID,
			"ip":         s.IP,
			"user_agent": s.UA,
			"created_at": s.CreatedAt,
			"expires_at": s.ExpiresAt,
			"current":    s.ID == current,
		})
	}
	response.OK(c, gin.H{"data": items})
}

// POST /auth/sessions/revoke-others
func (h *Handler) revokeOtherSessions(c *gin.Context) {
	err := sessionpkg.RevokeAllExcept(h.svc.db, middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		h.log.Error("revoke sessions failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"success": true})
}
