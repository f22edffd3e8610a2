package review

import (
	"errors"
	"strings"

	"github.com/e-terminus/core/internal/middleware"
	"github.com/e-terminus/core/internal/pkg/pagination"
	"github.com/e-terminus/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/reviews")
	g.GET("", h.list)
	g.POST("", authMW, h.create)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateReviewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	r, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidRating):
			response.BadRequest(c, errInvalidRating.Error())
		case errors.Is(err, errCommentTooLong):
			response.FieldError(c, "comment", errCommentTooLong.Error())
		case errors.Is(err, errUnknownOperator):
			response.NotFound(c, "Operator not found")
		default:
			h.svc.log.Error("review create failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Created(c, r)
}

func (h *Handler) list(c *gin.Context) {
	operatorID := strings.TrimSpace(c.Query("operator_id"))
	if operatorID == "" {
		response.FieldError(c, "operator_id", "operator_id is required")
		return
	}

	reviews, meta, err := h.svc.ListByOperator(operatorID, pagination.FromContext(c))
	if err != nil {
		h.svc.log.Error("review list failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Paged(c, reviews, meta)
}
