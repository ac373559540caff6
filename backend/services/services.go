// Package services holds the application workflows that sit between the HTTP
// controllers and the database, media host and payment gateway.
package services

import (
	"context"
	"errors"

	"coursehub/backend/payment"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrNotPurchased         = errors.New("course not purchased")
	ErrAlreadyPurchased     = errors.New("course already purchased")
	ErrUnknownChapter       = errors.New("chapter does not belong to course")
	ErrNoQuiz               = errors.New("chapter has no quiz")
	ErrQuizNotPassed        = errors.New("chapter quiz not passed")
	ErrNoChapters           = errors.New("course has no chapters")
	ErrHasPurchases         = errors.New("course has purchases")
	ErrNotPublished         = errors.New("course is not published")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrAmountMismatch       = errors.New("paid amount does not match purchase")
	ErrInvalidRole          = errors.New("invalid role")
)

type MediaHost interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

type PaymentGateway interface {
	Verify(ctx context.Context, reference string) (payment.Verification, error)
}
