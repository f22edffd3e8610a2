package review

import (
	"strings"

	"github.com/e-terminus/core/internal/models"
	"github.com/e-terminus/core/internal/pkg/pagination"
	"github.com/e-terminus/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Create stores a review after validating rating bounds and comment length.
func (s *Service) Create(userID string, dto *CreateReviewDTO) (*models.ReviewModel, error) {
	if dto.Rating < 1 || dto.Rating > 5 {
		return nil, errInvalidRating
	}
	comment := strings.TrimSpace(dto.Comment)
	if len(comment) > maxCommentLength {
		return nil, errCommentTooLong
	}

	var count int64
	if err := s.db.Model(&models.OperatorModel{}).Where("id = ?", dto.OperatorID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errUnknownOperator
	}

	r := models.ReviewModel{
		UserID:     userID,
		OperatorID: dto.OperatorID,
		Rating:     dto.Rating,
		Comment:    comment,
	}
	if err := s.db.Create(&r).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&r, "id = ?", r.ID).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByOperator returns an operator's reviews, newest first.
func (s *Service) ListByOperator(operatorID string, page pagination.Query) ([]models.ReviewModel, response.Pagination, error) {
	query := s.db.Model(&models.ReviewModel{}).
		Where("operator_id = ?", operatorID).
		Preload("User").
		Order("created_at DESC")

	var reviews []models.ReviewModel
	meta, err := pagination.Paginate(query, page, &reviews)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return reviews, meta, nil
}
