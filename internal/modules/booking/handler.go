package booking

import (
	"errors"
	"net/http"

	"github.com/e-terminus/core/internal/middleware"
	"github.com/e-terminus/core/internal/pkg/pagination"
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
	g := rg.Group("/bookings", authMW)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidSeatCount):
			response.FieldError(c, "seats", errInvalidSeatCount.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "Schedule not found")
		case errors.Is(err, errScheduleUnavailable):
			response.Conflict(c, errScheduleUnavailable.Error())
		case errors.Is(err, errNotEnoughSeats):
			response.Conflict(c, errNotEnoughSeats.Error())
		case errors.Is(err, errGatewayFailure):
			// The booking row exists and stays pending; the client can retry
			// payment once the gateway recovers.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"ok":         0,
				"code":       http.StatusInternalServerError,
				"error":      "Payment initiation failed, booking is pending",
				"booking_id": booking.ID,
			})
		default:
			h.svc.log.Error("booking create failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.Created(c, booking)
}

func (h *Handler) list(c *gin.Context) {
	bookings, meta, err := h.svc.List(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		h.svc.log.Error("booking list failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Paged(c, bookings, meta)
}

func (h *Handler) get(c *gin.Context) {
	booking, err := h.svc.Get(c.Param("id"), middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "Booking not found")
		case errors.Is(err, errNotOwner):
			response.Forbidden(c, "Not your booking")
		default:
			h.svc.log.Error("booking load failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, booking)
}
