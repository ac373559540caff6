package controllers

import (
	"io"
	"log"

	"coursehub/backend/quiz"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses *services.CourseService
	Logger  *log.Logger
}

func NewCoursesController(courses *services.CourseService, logger *log.Logger) *CoursesController {
	return &CoursesController{Courses: courses, Logger: logger}
}

type CourseRequest struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Category    string `json:"category" validate:"max=100"`
	Price       *int64 `json:"price" validate:"omitempty,gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

type ChapterRequest struct {
	Title      string     `json:"title" validate:"omitempty,min=1,max=200"`
	Content    string     `json:"content"`
	Quiz       *quiz.Quiz `json:"quiz"`
	RemoveQuiz bool       `json:"remove_quiz"`
}

func (r CourseRequest) input() services.CourseInput {
	return services.CourseInput{Title: r.Title, Description: r.Description, Category: r.Category, Price: r.Price, Currency: r.Currency}
}

func (r ChapterRequest) input() services.ChapterInput {
	return services.ChapterInput{Title: r.Title, Content: r.Content, Quiz: r.Quiz, RemoveQuiz: r.RemoveQuiz}
}

// CreateCourse godoc
// @Summary Create a draft course
// @Tags instructor
// @Accept json
// @Produce json
// @Param input body CourseRequest true "Course data"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /instructor/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input CourseRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}
	if input.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "is required"})
	}

	course, err := cc.Courses.Create(currentUser(c).ID, input.input())
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	var input CourseRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	course, err := cc.Courses.Update(currentUser(c), courseID, input.input())
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.OK(c, "Course updated", course)
}

func (cc *CoursesController) PublishCourse(c *fiber.Ctx) error {
	return cc.setPublished(c, true)
}

func (cc *CoursesController) UnpublishCourse(c *fiber.Ctx) error {
	return cc.setPublished(c, false)
}

func (cc *CoursesController) setPublished(c *fiber.Ctx, published bool) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	course, err := cc.Courses.SetPublished(currentUser(c), courseID, published)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.OK(c, "Course updated", course)
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	if err := cc.Courses.Delete(c.UserContext(), currentUser(c), courseID); err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.NoContent(c)
}

// GetInstructorCourses lists the caller's own courses, drafts included.
func (cc *CoursesController) GetInstructorCourses(c *fiber.Ctx) error {
	courses, err := cc.Courses.ListByInstructor(currentUser(c).ID)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, courses)
}

// GetInstructorCourse returns a course with chapter content and full quizzes.
func (cc *CoursesController) GetInstructorCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	course, err := cc.Courses.Get(currentUser(c), courseID)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}

	chapters := make([]instructorChapterView, 0, len(course.Chapters))
	for _, ch := range course.Chapters {
		view, err := instructorChapter(ch)
		if err != nil {
			return respondError(c, cc.Logger, err)
		}
		chapters = append(chapters, view)
	}
	return utils.Success(c, fiber.StatusOK, courseView{Course: *course, Chapters: chapters})
}

// AddChapter godoc
// @Summary Add a chapter, optionally with a quiz
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body ChapterRequest true "Chapter data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /instructor/courses/{id}/chapters [post]
func (cc *CoursesController) AddChapter(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	var input ChapterRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}
	if input.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "is required"})
	}

	chapter, err := cc.Courses.AddChapter(currentUser(c), courseID, input.input())
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	view, err := instructorChapter(*chapter)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.Created(c, view)
}

func (cc *CoursesController) UpdateChapter(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID, ok := paramID(c, "chapterId")
	if !ok {
		return utils.BadRequest(c, "Invalid chapter ID")
	}
	var input ChapterRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	chapter, err := cc.Courses.UpdateChapter(currentUser(c), courseID, chapterID, input.input())
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	view, err := instructorChapter(*chapter)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.OK(c, "Chapter updated", view)
}

func (cc *CoursesController) DeleteChapter(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID, ok := paramID(c, "chapterId")
	if !ok {
		return utils.BadRequest(c, "Invalid chapter ID")
	}
	if err := cc.Courses.DeleteChapter(currentUser(c), courseID, chapterID); err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.NoContent(c)
}

// UploadThumbnail expects a multipart form with a "thumbnail" image file.
func (cc *CoursesController) UploadThumbnail(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	header, err := c.FormFile("thumbnail")
	if err != nil {
		return utils.BadRequest(c, "Missing thumbnail file")
	}
	file, err := header.Open()
	if err != nil {
		return utils.BadRequest(c, "Cannot read thumbnail file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.BadRequest(c, "Cannot read thumbnail file")
	}

	course, err := cc.Courses.SetThumbnail(c.UserContext(), currentUser(c), courseID, data)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.OK(c, "Thumbnail updated", course)
}

// ListCourses godoc
// @Summary Browse the published catalogue
// @Tags catalogue
// @Produce json
// @Param search query string false "Search in title and description"
// @Param category query string false "Category"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	courses, total, err := cc.Courses.ListPublished(services.CatalogueFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.Paginate(c, courses, total, page, pageSize)
}

// GetCourse returns the public course page: chapter titles only.
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	course, err := cc.Courses.GetPublished(courseID)
	if err != nil {
		return respondError(c, cc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, courseView{Course: *course, Chapters: outlineChapters(course.Chapters)})
}
