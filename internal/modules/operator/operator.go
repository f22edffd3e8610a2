package operator

import (
	"errors"

	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/pkg/pagination"
	"github.com/e-terminus/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OperatorSummary is an operator with its review aggregate.
type OperatorSummary struct {
	models.OperatorModel
	Rating      float64 `json:"rating"`
	ReviewCount int64   `json:"review_count"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// List returns active operators, alphabetically, with rating aggregates.
func (s *Service) List(page pagination.Query) ([]OperatorSummary, response.Pagination, error) {
	query := s.db.Model(&models.OperatorModel{}).
		Where("active = ?", true).
		Order("name ASC")

	var operators []models.OperatorModel
	meta, err := pagination.Paginate(query, page, &operators)
	if err != nil {
		return nil, response.Pagination{}, err
	}

	summaries := make([]OperatorSummary, 0, len(operators))
	for _, op := range operators {
		summary := OperatorSummary{OperatorModel: op}
		if err := s.fillRating(&summary); err != nil {
			return nil, response.Pagination{}, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, meta, nil
}

func (s *Service) Get(id string) (*OperatorSummary, error) {
	var op models.OperatorModel
	if err := s.db.First(&op, "id = ?", id).Error; err != nil {
		return nil, err
	}
	summary := OperatorSummary{OperatorModel: op}
	if err := s.fillRating(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) fillRating(summary *OperatorSummary) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := s.db.Model(&models.ReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("operator_id = ?", summary.ID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	summary.Rating = agg.Avg
	summary.ReviewCount = agg.Count
	return nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, _ gin.HandlerFunc) {
	g := rg.Group("/operators")
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	operators, meta, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		h.svc.log.Error("operator list failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Paged(c, operators, meta)
}

func (h *Handler) get(c *gin.Context) {
	op, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Operator not found")
			return
		}
		h.svc.log.Error("operator load failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, op)
}
