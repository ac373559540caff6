package controllers

import (
	"errors"
	"log"

	"coursehub/backend/media"
	"coursehub/backend/payment"
	"coursehub/backend/progress"
	"coursehub/backend/quiz"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrNotPurchased, fiber.StatusForbidden},
	{services.ErrAlreadyPurchased, fiber.StatusConflict},
	{services.ErrUnknownChapter, fiber.StatusBadRequest},
	{services.ErrNoQuiz, fiber.StatusBadRequest},
	{services.ErrQuizNotPassed, fiber.StatusConflict},
	{services.ErrNoChapters, fiber.StatusConflict},
	{services.ErrHasPurchases, fiber.StatusConflict},
	{services.ErrNotPublished, fiber.StatusBadRequest},
	{services.ErrPaymentNotSuccessful, fiber.StatusPaymentRequired},
	{services.ErrAmountMismatch, fiber.StatusConflict},
	{services.ErrInvalidRole, fiber.StatusBadRequest},
	{payment.ErrVerificationFailed, fiber.StatusBadGateway},
	{quiz.ErrInvalidQuiz, fiber.StatusUnprocessableEntity},
	{quiz.ErrUnknownQuestionType, fiber.StatusUnprocessableEntity},
	{quiz.ErrNoQuestions, fiber.StatusUnprocessableEntity},
	{progress.ErrInvalidArgument, fiber.StatusBadRequest},
	{media.ErrUnsupportedType, fiber.StatusUnsupportedMediaType},
	{media.ErrTooLarge, fiber.StatusRequestEntityTooLarge},
}

// respondError maps a service error to its HTTP status. Anything unmapped is
// logged and reported as a 500 without leaking the cause.
func respondError(c *fiber.Ctx, logger *log.Logger, err error) error {
	if status, ok := statusFor(err); ok {
		return utils.Error(c, status, err)
	}
	logger.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return utils.InternalServerError(c, "Internal server error")
}

func statusFor(err error) (int, bool) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}
	return 0, false
}
