package controllers

import (
	"log"

	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminController serves the moderation and reporting endpoints. Every route
// sits behind AdminMiddleware.
type AdminController struct {
	Admin    *services.AdminService
	Courses  *services.CourseService
	Learning *services.LearningService
	Logger   *log.Logger
}

func NewAdminController(admin *services.AdminService, courses *services.CourseService, learning *services.LearningService, logger *log.Logger) *AdminController {
	return &AdminController{Admin: admin, Courses: courses, Learning: learning, Logger: logger}
}

type BanRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student instructor admin"`
}

type ForceCompleteRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

func (ac *AdminController) ListUsers(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	users, total, err := ac.Admin.ListUsers(c.Query("role"), page, pageSize)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return utils.Paginate(c, users, total, page, pageSize)
}

func (ac *AdminController) SetBanned(c *fiber.Ctx) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid user ID")
	}
	var input BanRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	user, err := ac.Admin.SetBanned(currentUser(c), userID, *input.Banned)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	ac.Logger.Printf("admin %d set banned=%t on user %d", currentUser(c).ID, *input.Banned, userID)
	return utils.OK(c, "User updated", user)
}

func (ac *AdminController) SetRole(c *fiber.Ctx) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid user ID")
	}
	var input RoleRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	user, err := ac.Admin.SetRole(currentUser(c), userID, input.Role)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	ac.Logger.Printf("admin %d set role=%s on user %d", currentUser(c).ID, input.Role, userID)
	return utils.OK(c, "User updated", user)
}

func (ac *AdminController) ListCourses(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	courses, total, err := ac.Admin.ListCourses(page, pageSize)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return utils.Paginate(c, courses, total, page, pageSize)
}

func (ac *AdminController) UnpublishCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	course, err := ac.Courses.SetPublished(currentUser(c), courseID, false)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return utils.OK(c, "Course unpublished", course)
}

// ForceComplete godoc
// @Summary Complete a chapter for a learner without a passing quiz score
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param chapterId path int true "Chapter ID"
// @Param input body ForceCompleteRequest true "Learner"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/chapters/{chapterId}/force-complete [post]
func (ac *AdminController) ForceComplete(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID, ok := paramID(c, "chapterId")
	if !ok {
		return utils.BadRequest(c, "Invalid chapter ID")
	}
	var input ForceCompleteRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	p, err := ac.Learning.ForceComplete(input.UserID, courseID, chapterID)
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	ac.Logger.Printf("admin %d force-completed chapter %d of course %d for user %d", currentUser(c).ID, chapterID, courseID, input.UserID)
	return utils.OK(c, "Chapter completed", p)
}

func (ac *AdminController) GetStats(c *fiber.Ctx) error {
	stats, err := ac.Admin.Stats()
	if err != nil {
		return respondError(c, ac.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}
