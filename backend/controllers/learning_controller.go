package controllers

import (
	"log"

	"coursehub/backend/quiz"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LearningController struct {
	Learning *services.LearningService
	Logger   *log.Logger
}

func NewLearningController(learning *services.LearningService, logger *log.Logger) *LearningController {
	return &LearningController{Learning: learning, Logger: logger}
}

type CompleteChapterRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

type SubmitQuizRequest struct {
	Answers quiz.Answers `json:"answers" validate:"required"`
}

// GetCourse returns a purchased course with chapter content and the caller's
// progress. Quizzes are sent without answers.
func (lc *LearningController) GetCourse(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, record, err := lc.Learning.Course(currentUser(c).ID, courseID)
	if err != nil {
		return respondError(c, lc.Logger, err)
	}
	chapters, err := learnerChapters(course.Chapters)
	if err != nil {
		return respondError(c, lc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course":   courseView{Course: *course, Chapters: chapters},
		"progress": record.Snapshot(),
	})
}

// CompleteChapter godoc
// @Summary Mark a chapter complete or incomplete
// @Tags learning
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param chapterId path int true "Chapter ID"
// @Param input body CompleteChapterRequest true "Completion flag"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learn/courses/{id}/chapters/{chapterId}/complete [post]
func (lc *LearningController) CompleteChapter(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID, ok := paramID(c, "chapterId")
	if !ok {
		return utils.BadRequest(c, "Invalid chapter ID")
	}
	var input CompleteChapterRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	p, err := lc.Learning.CompleteChapter(currentUser(c).ID, courseID, chapterID, *input.Completed)
	if err != nil {
		return respondError(c, lc.Logger, err)
	}
	return utils.OK(c, "Progress updated", p)
}

// SubmitQuiz godoc
// @Summary Submit answers for a chapter quiz
// @Description Grades the attempt, records the score and completes the chapter when the attempt passes.
// @Tags learning
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param chapterId path int true "Chapter ID"
// @Param input body SubmitQuizRequest true "Answers keyed by question index"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /learn/courses/{id}/chapters/{chapterId}/quiz [post]
func (lc *LearningController) SubmitQuiz(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID, ok := paramID(c, "chapterId")
	if !ok {
		return utils.BadRequest(c, "Invalid chapter ID")
	}
	var input SubmitQuizRequest
	if ok, err := bind(c, &input); !ok {
		return err
	}

	outcome, err := lc.Learning.SubmitQuiz(currentUser(c).ID, courseID, chapterID, input.Answers)
	if err != nil {
		return respondError(c, lc.Logger, err)
	}
	message := "Quiz not passed"
	if outcome.Passed {
		message = "Quiz passed"
	}
	return utils.OK(c, message, outcome)
}

func (lc *LearningController) GetProgress(c *fiber.Ctx) error {
	records, err := lc.Learning.ListProgress(currentUser(c).ID)
	if err != nil {
		return respondError(c, lc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, records)
}
