package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"coursehub/backend/models"
	"coursehub/backend/payment"
	"coursehub/backend/progress"

	"gorm.io/gorm"
)

type PurchaseService struct {
	db      *gorm.DB
	gateway PaymentGateway
	logger  *log.Logger
	now     func() time.Time
}

func NewPurchaseService(db *gorm.DB, gateway PaymentGateway, logger *log.Logger) *PurchaseService {
	return &PurchaseService{db: db, gateway: gateway, logger: logger, now: time.Now}
}

// Checkout opens a pending purchase for the client-side payment flow. An
// existing pending purchase is reused. Free courses complete immediately.
func (s *PurchaseService) Checkout(userID, courseID uint) (*models.Purchase, error) {
	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !course.Published {
		return nil, ErrNotPublished
	}
	if course.InstructorID == userID {
		return nil, fmt.Errorf("%w: instructors cannot buy their own course", ErrForbidden)
	}

	var existing models.Purchase
	err := s.db.Where("user_id = ? AND course_id = ? AND status IN ?", userID, courseID,
		[]string{models.PurchaseCompleted, models.PurchasePending}).
		Order("id DESC").
		First(&existing).Error
	switch {
	case err == nil && existing.Status == models.PurchaseCompleted:
		return nil, ErrAlreadyPurchased
	case err == nil && existing.Amount == course.Price:
		return &existing, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	purchase := models.Purchase{
		UserID:    userID,
		CourseID:  courseID,
		Reference: payment.NewReference(),
		Amount:    course.Price,
		Currency:  course.Currency,
		Status:    models.PurchasePending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// A price change leaves the old pending checkout unusable.
		if err := tx.Model(&models.Purchase{}).
			Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.PurchasePending).
			Update("status", models.PurchaseAbandoned).Error; err != nil {
			return err
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		if purchase.Amount == 0 {
			return s.complete(tx, &purchase, s.now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Verify confirms a purchase with the payment gateway and grants access.
// Verifying an already completed purchase returns it unchanged.
func (s *PurchaseService) Verify(ctx context.Context, userID uint, reference string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.Where("reference = ? AND user_id = ?", reference, userID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if purchase.Status == models.PurchaseCompleted {
		return &purchase, nil
	}

	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !v.Succeeded() {
		return nil, fmt.Errorf("%w: status %q", ErrPaymentNotSuccessful, v.Status)
	}
	if v.Amount != purchase.Amount || (v.Currency != "" && v.Currency != purchase.Currency) {
		s.logger.Printf("purchase %s: paid %d %s, expected %d %s", reference, v.Amount, v.Currency, purchase.Amount, purchase.Currency)
		return nil, ErrAmountMismatch
	}

	paidAt := v.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.complete(tx, &purchase, paidAt)
	}); err != nil {
		return nil, err
	}
	return &purchase, nil
}

// complete marks the purchase paid, bumps the course enrolment counter and
// creates the learner's empty progress record in one transaction. A purchase
// that is already completed is left alone, and so is the counter when another
// purchase of the same course already enrolled the user.
func (s *PurchaseService) complete(tx *gorm.DB, purchase *models.Purchase, paidAt time.Time) error {
	paidAt = paidAt.UTC()
	res := tx.Model(&models.Purchase{}).
		Where("id = ? AND status <> ?", purchase.ID, models.PurchaseCompleted).
		Updates(map[string]interface{}{
			"status":  models.PurchaseCompleted,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	purchase.Status = models.PurchaseCompleted
	purchase.PaidAt = &paidAt
	if res.RowsAffected == 0 {
		return nil
	}

	// An abandoned checkout paid after a newer one already enrolled the user.
	var earlier int64
	if err := tx.Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ? AND id <> ?",
			purchase.UserID, purchase.CourseID, models.PurchaseCompleted, purchase.ID).
		Count(&earlier).Error; err != nil {
		return err
	}
	if earlier > 0 {
		return nil
	}

	if err := tx.Model(&models.Course{}).
		Where("id = ?", purchase.CourseID).
		Update("enrolled_count", gorm.Expr("enrolled_count + ?", 1)).Error; err != nil {
		return err
	}

	var record models.CourseProgress
	record.Apply(progress.CourseProgress{})
	return tx.Where(models.CourseProgress{UserID: purchase.UserID, CourseID: purchase.CourseID}).
		Attrs(record).
		FirstOrCreate(&record).Error
}

func (s *PurchaseService) List(userID uint) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Where("user_id = ?", userID).
		Preload("Course").
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// ExpireStale marks pending purchases created before now-ttl as abandoned.
func (s *PurchaseService) ExpireStale(ttl time.Duration) (int64, error) {
	cutoff := s.now().Add(-ttl)
	res := s.db.Model(&models.Purchase{}).
		Where("status = ? AND created_at < ?", models.PurchasePending, cutoff).
		Update("status", models.PurchaseAbandoned)
	return res.RowsAffected, res.Error
}

// HasPurchased reports whether the user owns the course.
func HasPurchased(db *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.PurchaseCompleted).
		Count(&count).Error
	return count > 0, err
}
