package payment

import (
	"errors"

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

// RegisterRoutes mounts the gateway callback. The endpoint is public: the
// gateway authenticates implicitly by knowing a live reference.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	g := rg.Group("/payments")
	g.POST("/callback", h.callback)
}

type callbackDTO struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status"    binding:"required"`
}

func (h *Handler) callback(c *gin.Context) {
	var dto callbackDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payment, err := h.svc.HandleCallback(dto.Reference, dto.Status)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidStatus):
			response.BadRequest(c, errInvalidStatus.Error())
		case errors.Is(err, errUnknownReference):
			response.NotFound(c, "Unknown payment reference")
		default:
			h.svc.log.Error("payment callback failed",
				zap.String("reference", dto.Reference), zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, gin.H{"reference": dto.Reference, "status": payment.Status})
}
