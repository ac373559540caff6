package controllers

import (
	"log"
	"strings"

	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewUserController(db *gorm.DB, logger *log.Logger) *UserController {
	return &UserController{DB: db, Logger: logger}
}

type UpdateUserRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	OldPassword string  `json:"old_password"`
	NewPassword string  `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// GetProfile godoc
// @Summary Get user profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, currentUser(c))
}

// UpdateProfile godoc
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input UpdateUserRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	user := currentUser(c)
	updates := map[string]interface{}{}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
		updates["name"] = user.Name
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
		updates["bio"] = user.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
		updates["avatar_url"] = user.AvatarURL
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Old password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashed)
		updates["password_hash"] = user.PasswordHash
	}

	if len(updates) == 0 {
		return utils.BadRequest(c, "Nothing to update")
	}
	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		return respondError(c, uc.Logger, err)
	}
	return utils.OK(c, "Profile updated", user)
}
