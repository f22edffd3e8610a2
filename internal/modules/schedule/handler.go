package schedule

import (
	"errors"

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

// RegisterRoutes mounts the public search/detail routes and the staff CRUD.
// staffMW must restrict to operator or admin roles.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, staffMW gin.HandlerFunc) {
	g := rg.Group("/schedules")

	g.GET("", h.search)
	g.GET("/:id", h.get)

	m := g.Group("", staffMW)
	m.POST("", h.create)
	m.PATCH("/:id", h.update)
	m.POST("/:id/cancel", h.cancel)
}

func (h *Handler) search(c *gin.Context) {
	q := SearchQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
		Date: c.Query("date"),
	}
	schedules, meta, err := h.svc.Search(q, pagination.FromContext(c))
	if err != nil {
		if errors.Is(err, errInvalidDate) {
			response.FieldError(c, "date", errInvalidDate.Error())
			return
		}
		h.svc.log.Error("schedule search failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Paged(c, schedules, meta)
}

func (h *Handler) get(c *gin.Context) {
	sched, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Schedule not found")
			return
		}
		h.svc.log.Error("schedule load failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, sched)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateScheduleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sched, err := h.svc.Create(&dto)
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	response.Created(c, sched)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateScheduleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sched, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	response.OK(c, sched)
}

func (h *Handler) cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Param("id")); err != nil {
		h.respondScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "Schedule not found")
	case errors.Is(err, errUnknownRoute), errors.Is(err, errUnknownBus):
		response.BadRequest(c, err.Error())
	case errors.Is(err, errInvalidFare), errors.Is(err, errInvalidSeats),
		errors.Is(err, errPastDeparture), errors.Is(err, errArrivalOrder):
		response.BadRequest(c, err.Error())
	case errors.Is(err, errAlreadyDeparted):
		response.Conflict(c, err.Error())
	default:
		h.svc.log.Error("schedule mutation failed", zap.Error(err))
		response.InternalError(c)
	}
}
