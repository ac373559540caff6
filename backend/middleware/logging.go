package middleware

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		userID := "-"
		if user, ok := CurrentUser(c); ok {
			userID = strconv.FormatUint(uint64(user.ID), 10)
		}

		logger.Printf("%s %s %s %d user=%s %v", c.IP(), c.Method(), c.Path(), status, userID, time.Since(start))
		return err
	}
}
