package routes

import (
	"log"

	"coursehub/backend/config"
	"coursehub/backend/controllers"
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/ratelimit"
	"coursehub/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Logger    *log.Logger
	Limiter   ratelimit.Limiter
	Courses   *services.CourseService
	Purchases *services.PurchaseService
	Learning  *services.LearningService
	Admin     *services.AdminService
}

func SetupRoutes(app *fiber.App, d Deps) {
	authMiddleware := middleware.AuthMiddleware(d.DB, d.Cfg)
	limit := func(scope string) fiber.Handler {
		return middleware.RateLimit(d.Limiter, scope, d.Logger)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authController := controllers.NewAuthController(d.DB, d.Cfg, d.Logger)
	auth := app.Group("/api/auth", limit("auth"))
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(d.DB, d.Logger)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Catalogue and checkout
	coursesController := controllers.NewCoursesController(d.Courses, d.Logger)
	purchaseController := controllers.NewPurchaseController(d.Purchases, d.Logger)
	app.Get("/api/courses", coursesController.ListCourses)
	app.Get("/api/courses/:id", coursesController.GetCourse)
	app.Post("/api/courses/:id/checkout", authMiddleware, limit("checkout"), purchaseController.Checkout)

	// Purchases
	purchases := app.Group("/api/purchases", authMiddleware)
	purchases.Get("/", purchaseController.ListPurchases)
	purchases.Post("/verify", limit("verify"), purchaseController.Verify)

	// Instructor routes
	instructor := app.Group("/api/instructor/courses", authMiddleware, middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))
	instructor.Get("/", coursesController.GetInstructorCourses)
	instructor.Post("/", coursesController.CreateCourse)
	instructor.Get("/:id", coursesController.GetInstructorCourse)
	instructor.Put("/:id", coursesController.UpdateCourse)
	instructor.Delete("/:id", coursesController.DeleteCourse)
	instructor.Post("/:id/publish", coursesController.PublishCourse)
	instructor.Post("/:id/unpublish", coursesController.UnpublishCourse)
	instructor.Post("/:id/thumbnail", coursesController.UploadThumbnail)
	instructor.Post("/:id/chapters", coursesController.AddChapter)
	instructor.Put("/:id/chapters/:chapterId", coursesController.UpdateChapter)
	instructor.Delete("/:id/chapters/:chapterId", coursesController.DeleteChapter)

	// Learning routes
	learningController := controllers.NewLearningController(d.Learning, d.Logger)
	learn := app.Group("/api/learn", authMiddleware)
	learn.Get("/progress", learningController.GetProgress)
	learn.Get("/courses/:id", learningController.GetCourse)
	learn.Post("/courses/:id/chapters/:chapterId/complete", learningController.CompleteChapter)
	learn.Post("/courses/:id/chapters/:chapterId/quiz", limit("quiz"), learningController.SubmitQuiz)

	// Admin routes
	adminController := controllers.NewAdminController(d.Admin, d.Courses, d.Learning, d.Logger)
	admin := app.Group("/api/admin", authMiddleware, middleware.AdminMiddleware())
	admin.Get("/users", adminController.ListUsers)
	admin.Put("/users/:id/ban", adminController.SetBanned)
	admin.Put("/users/:id/role", adminController.SetRole)
	admin.Get("/courses", adminController.ListCourses)
	admin.Post("/courses/:id/unpublish", adminController.UnpublishCourse)
	admin.Post("/courses/:id/chapters/:chapterId/force-complete", adminController.ForceComplete)
	admin.Get("/stats", adminController.GetStats)
}
