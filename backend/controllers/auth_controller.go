package controllers

import (
	"errors"
	"log"
	"strings"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Logger: logger}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a student or instructor account and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterRequest true "Registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var existing int64
	if err := ac.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return respondError(c, ac.Logger, err)
	}
	if existing > 0 {
		return utils.Conflict(c, "Email is already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}
	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return respondError(c, ac.Logger, err)
	}

	token, err := utils.GenerateJWTToken(user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.Created(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return respondError(c, ac.Logger, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}
	if user.Banned {
		return utils.Forbidden(c, "Account is banned")
	}

	token, err := utils.GenerateJWTToken(user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return utils.OK(c, "Logged in", fiber.Map{
		"token": token,
		"user":  user,
	})
}
