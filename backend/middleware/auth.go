package middleware

import (
	"errors"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userKey = "user"

// AuthMiddleware resolves the bearer token to a user and stores it in the
// request locals. Banned users are turned away.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ExtractClaimsFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.InternalServerError(c, "Could not query database")
		}
		if user.Banned {
			return utils.Forbidden(c, "Account is banned")
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireRole must run after AuthMiddleware. The role is read from the
// database record, not the token, so role changes apply immediately.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Insufficient role")
	}
}

func AdminMiddleware() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}

func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userKey).(models.User)
	return user, ok
}
