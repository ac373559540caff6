package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"coursehub/backend/media"
	"coursehub/backend/models"
	"coursehub/backend/progress"
	"coursehub/backend/quiz"

	"gorm.io/gorm"
)

type CourseInput struct {
	Title       string
	Description string
	Category    string
	Price       *int64
	Currency    string
}

type ChapterInput struct {
	Title      string
	Content    string
	Quiz       *quiz.Quiz
	RemoveQuiz bool
}

type CatalogueFilter struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

type CourseService struct {
	db     *gorm.DB
	media  MediaHost
	logger *log.Logger
}

func NewCourseService(db *gorm.DB, mediaHost MediaHost, logger *log.Logger) *CourseService {
	return &CourseService{db: db, media: mediaHost, logger: logger}
}

func (s *CourseService) Create(instructorID uint, in CourseInput) (*models.Course, error) {
	course := models.Course{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Category:     in.Category,
		InstructorID: instructorID,
		Currency:     in.Currency,
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if course.Currency == "" {
		course.Currency = "NGN"
	}

	if err := s.db.Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) Update(actor models.User, courseID uint, in CourseInput) (*models.Course, error) {
	course, err := s.owned(s.db, actor, courseID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		course.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		course.Description = in.Description
	}
	if in.Category != "" {
		course.Category = in.Category
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if in.Currency != "" {
		course.Currency = in.Currency
	}

	if err := s.db.Save(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// SetPublished publishes or unpublishes a course. A course needs at least one
// chapter before it can be published.
func (s *CourseService) SetPublished(actor models.User, courseID uint, published bool) (*models.Course, error) {
	course, err := s.owned(s.db, actor, courseID)
	if err != nil {
		return nil, err
	}

	if published {
		var chapters int64
		if err := s.db.Model(&models.Chapter{}).Where("course_id = ?", courseID).Count(&chapters).Error; err != nil {
			return nil, err
		}
		if chapters == 0 {
			return nil, ErrNoChapters
		}
	}

	course.Published = published
	if err := s.db.Model(course).Update("published", published).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// Delete removes a course that nobody has bought yet, along with its chapters
// and thumbnail.
func (s *CourseService) Delete(ctx context.Context, actor models.User, courseID uint) error {
	course, err := s.owned(s.db, actor, courseID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var purchases int64
		if err := tx.Model(&models.Purchase{}).
			Where("course_id = ? AND status = ?", courseID, models.PurchaseCompleted).
			Count(&purchases).Error; err != nil {
			return err
		}
		if purchases > 0 {
			return ErrHasPurchases
		}

		if err := tx.Where("course_id = ?", courseID).Delete(&models.Chapter{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return err
	}

	if course.ThumbnailPath != "" {
		if err := s.media.Delete(ctx, course.ThumbnailPath); err != nil {
			s.logger.Printf("course %d: delete thumbnail %s: %v", courseID, course.ThumbnailPath, err)
		}
	}
	return nil
}

func (s *CourseService) ListByInstructor(instructorID uint) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// Get returns a course the actor may edit, with its chapters in order.
func (s *CourseService) Get(actor models.User, courseID uint) (*models.Course, error) {
	course, err := s.owned(s.db, actor, courseID)
	if err != nil {
		return nil, err
	}
	if course.Chapters, err = s.Chapters(courseID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) AddChapter(actor models.User, courseID uint, in ChapterInput) (*models.Chapter, error) {
	if in.Quiz != nil {
		if err := quiz.Validate(*in.Quiz); err != nil {
			return nil, err
		}
	}

	var chapter models.Chapter
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.owned(tx, actor, courseID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Chapter{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
			return err
		}

		chapter = models.Chapter{
			CourseID:      courseID,
			Title:         strings.TrimSpace(in.Title),
			Content:       in.Content,
			SequenceOrder: int(count) + 1,
		}
		if err := chapter.SetQuiz(in.Quiz); err != nil {
			return err
		}
		if err := tx.Create(&chapter).Error; err != nil {
			return err
		}
		return reconcileCourseProgress(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// UpdateChapter edits a chapter. When its quiz is replaced or removed, every
// learner's score for the chapter is discarded, and a completion that relied
// on the old quiz is withdrawn.
func (s *CourseService) UpdateChapter(actor models.User, courseID, chapterID uint, in ChapterInput) (*models.Chapter, error) {
	if in.Quiz != nil {
		if err := quiz.Validate(*in.Quiz); err != nil {
			return nil, err
		}
	}

	var chapter *models.Chapter
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.owned(tx, actor, courseID); err != nil {
			return err
		}

		var err error
		if chapter, err = findChapter(tx, courseID, chapterID); err != nil {
			return err
		}

		if in.Title != "" {
			chapter.Title = strings.TrimSpace(in.Title)
		}
		if in.Content != "" {
			chapter.Content = in.Content
		}

		previous, err := quizFingerprint(*chapter)
		if err != nil {
			return err
		}
		switch {
		case in.RemoveQuiz:
			if err := chapter.SetQuiz(nil); err != nil {
				return err
			}
		case in.Quiz != nil:
			if err := chapter.SetQuiz(in.Quiz); err != nil {
				return err
			}
		}

		if err := tx.Save(chapter).Error; err != nil {
			return err
		}
		current, err := quizFingerprint(*chapter)
		if err != nil {
			return err
		}
		if bytes.Equal(previous, current) {
			return nil
		}
		return resetChapterQuiz(tx, courseID, *chapter)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapter removes a chapter and brings every learner's progress back in
// line with the remaining chapters.
func (s *CourseService) DeleteChapter(actor models.User, courseID, chapterID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.owned(tx, actor, courseID); err != nil {
			return err
		}
		chapter, err := findChapter(tx, courseID, chapterID)
		if err != nil {
			return err
		}
		if err := tx.Delete(chapter).Error; err != nil {
			return err
		}
		return reconcileCourseProgress(tx, courseID)
	})
}

// SetThumbnail uploads a new cover image and removes the previous one.
func (s *CourseService) SetThumbnail(ctx context.Context, actor models.User, courseID uint, data []byte) (*models.Course, error) {
	course, err := s.owned(s.db, actor, courseID)
	if err != nil {
		return nil, err
	}

	contentType, err := media.DetectImageType(data)
	if err != nil {
		return nil, err
	}
	objectPath, err := media.ObjectPath(course.InstructorID, fmt.Sprintf("courses/%d", course.ID), contentType)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, objectPath, data, contentType)
	if err != nil {
		return nil, err
	}

	previous := course.ThumbnailPath
	course.ThumbnailURL = url
	course.ThumbnailPath = objectPath
	if err := s.db.Model(course).Updates(map[string]interface{}{
		"thumbnail_url":  url,
		"thumbnail_path": objectPath,
	}).Error; err != nil {
		return nil, err
	}

	if previous != "" {
		if err := s.media.Delete(ctx, previous); err != nil {
			s.logger.Printf("course %d: delete old thumbnail %s: %v", courseID, previous, err)
		}
	}
	return course, nil
}

// ListPublished returns one catalogue page and the total match count.
func (s *CourseService) ListPublished(f CatalogueFilter) ([]models.Course, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	query := s.db.Model(&models.Course{}).Where("published = ?", true)
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	err := query.Order("enrolled_count DESC, created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&courses).Error
	return courses, total, err
}

// GetPublished returns a published course with its chapters.
func (s *CourseService) GetPublished(courseID uint) (*models.Course, error) {
	var course models.Course
	if err := s.db.Where("published = ?", true).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	chapters, err := s.Chapters(courseID)
	if err != nil {
		return nil, err
	}
	course.Chapters = chapters
	return &course, nil
}

func (s *CourseService) Chapters(courseID uint) ([]models.Chapter, error) {
	return listChapters(s.db, courseID)
}

// owned loads a course the actor may modify: its instructor or an admin.
func (s *CourseService) owned(db *gorm.DB, actor models.User, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return &course, nil
}

func listChapters(db *gorm.DB, courseID uint) ([]models.Chapter, error) {
	var chapters []models.Chapter
	err := db.Where("course_id = ?", courseID).
		Order("sequence_order ASC, id ASC").
		Find(&chapters).Error
	return chapters, err
}

func findChapter(db *gorm.DB, courseID, chapterID uint) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := db.Where("course_id = ?", courseID).First(&chapter, chapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownChapter
		}
		return nil, err
	}
	return &chapter, nil
}

// reconcileCourseProgress recomputes every learner's progress for a course
// after its chapter list changed.
func reconcileCourseProgress(tx *gorm.DB, courseID uint) error {
	chapters, err := listChapters(tx, courseID)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		keys = append(keys, ch.Key())
	}

	var rows []models.CourseProgress
	if err := tx.Where("course_id = ?", courseID).Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		rows[i].Apply(progress.Reconcile(rows[i].Snapshot(), keys))
		if err := tx.Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// resetChapterQuiz clears every learner's score for a chapter whose quiz
// changed and recomputes their progress.
func resetChapterQuiz(tx *gorm.DB, courseID uint, chapter models.Chapter) error {
	chapters, err := listChapters(tx, courseID)
	if err != nil {
		return err
	}

	var rows []models.CourseProgress
	if err := tx.Where("course_id = ?", courseID).Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		next, err := progress.ResetQuiz(rows[i].Snapshot(), chapter.Key(), chapter.HasQuiz(), len(chapters))
		if err != nil {
			return err
		}
		rows[i].Apply(next)
		if err := tx.Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// quizFingerprint is the canonical encoding of a chapter's quiz, nil when it
// has none. Stored JSON may be reformatted by the database.
func quizFingerprint(ch models.Chapter) ([]byte, error) {
	q, err := ch.QuizDefinition()
	if err != nil || q == nil {
		return nil, err
	}
	return json.Marshal(q)
}
