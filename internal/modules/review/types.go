package review

import "errors"

const maxCommentLength = 1000

type CreateReviewDTO struct {
	OperatorID string `json:"operator_id" binding:"required"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

var (
	errInvalidRating   = errors.New("Rating must be between 1 and 5")
	errCommentTooLong  = errors.New("comment exceeds 1000 characters")
	errUnknownOperator = errors.New("operator not found")
)
