package payment

import (
	"errors"

	"github.com/e-terminus/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Callback status values accepted from the gateway.
const (
	CallbackSuccess = "success"
	CallbackFailed  = "failed"
)

var (
	errUnknownReference = errors.New("unknown payment reference")
	errInvalidStatus    = errors.New("status must be success or failed")
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	prefix string
}

func NewService(db *gorm.DB, log *zap.Logger, prefix string) *Service {
	return &Service{db: db, log: log, prefix: prefix}
}

// HandleCallback settles a payment from a gateway notification. Repeat
// callbacks for an already settled payment are acknowledged without changes.
func (s *Service) HandleCallback(reference, status string) (*models.PaymentModel, error) {
	if status != CallbackSuccess && status != CallbackFailed {
		return nil, errInvalidStatus
	}
	bookingID, paymentID, ok := ParseReference(s.prefix, reference)
	if !ok {
		return nil, errUnknownReference
	}

	var payment models.PaymentModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&payment, "id = ? AND booking_id = ? AND reference_no = ?",
			paymentID, bookingID, reference).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownReference
			}
			return err
		}

		if payment.Status != models.PaymentPending {
			return nil
		}

		paymentStatus := models.PaymentCompleted
		bookingStatus := models.BookingConfirmed
		if status == CallbackFailed {
			paymentStatus = models.PaymentFailed
			bookingStatus = models.BookingCancelled
		}

		if err := tx.Model(&payment).Update("status", paymentStatus).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.BookingModel{}).Where("id = ?", bookingID).
			Update("status", bookingStatus).Error; err != nil {
			return err
		}
		payment.Status = paymentStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment callback settled",
		zap.String("reference", reference),
		zap.String("status", payment.Status))
	return &payment, nil
}
