package user

import (
	"errors"

	"github.com/e-terminus/core/internal/middleware"
	"github.com/e-terminus/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users", authMW)

	g.GET("/me", h.me)
	g.PATCH("/me", h.updateProfile)
	g.PATCH("/me/password", h.changePassword)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Get(middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		h.svc.log.Error("load profile failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, u.Public())
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errInvalidPhone) {
			response.FieldError(c, "phone", errInvalidPhone.Error())
			return
		}
		h.svc.log.Error("update profile failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, u.Public())
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.svc.ChangePassword(middleware.CurrentUserID(c), middleware.CurrentSessionID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errWrongPassword):
			response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, errShortPassword):
			response.FieldError(c, "new_password", errShortPassword.Error())
		default:
			h.svc.log.Error("change password failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, gin.H{"success": true})
}
