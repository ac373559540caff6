package services

import (
	"errors"
	"time"

	"coursehub/backend/models"
	"coursehub/backend/progress"
	"coursehub/backend/quiz"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearningService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLearningService(db *gorm.DB) *LearningService {
	return &LearningService{db: db, now: time.Now}
}

// QuizOutcome is the result of one quiz submission.
type QuizOutcome struct {
	Result       quiz.Result             `json:"result"`
	Passed       bool                    `json:"passed"`
	PassingScore int                     `json:"passing_score"`
	Progress     progress.CourseProgress `json:"progress"`
}

// Course returns a purchased course with its chapters and the learner's
// progress.
func (s *LearningService) Course(userID, courseID uint) (*models.Course, *models.CourseProgress, error) {
	if err := s.requirePurchase(s.db, userID, courseID); err != nil {
		return nil, nil, err
	}

	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	chapters, err := listChapters(s.db, courseID)
	if err != nil {
		return nil, nil, err
	}
	course.Chapters = chapters

	record, err := s.loadProgress(s.db, userID, courseID, false)
	if err != nil {
		return nil, nil, err
	}
	return &course, record, nil
}

// CompleteChapter marks a chapter complete or incomplete. A quiz-gated chapter
// can only be completed once a passing score is on record.
func (s *LearningService) CompleteChapter(userID, courseID, chapterID uint, completed bool) (progress.CourseProgress, error) {
	return s.update(userID, courseID, chapterID, func(p progress.CourseProgress, ch models.Chapter, total int) (progress.CourseProgress, error) {
		if completed {
			q, err := ch.QuizDefinition()
			if err != nil {
				return p, err
			}
			if q != nil && !progress.CanComplete(p, ch.Key(), true, q.PassingScore) {
				return p, ErrQuizNotPassed
			}
		}
		return progress.MarkChapterComplete(p, ch.Key(), completed, total)
	})
}

// SubmitQuiz grades answers, records the attempt and completes the chapter
// when the attempt passes. A failing attempt is recorded but never removes an
// earlier completion.
func (s *LearningService) SubmitQuiz(userID, courseID, chapterID uint, answers quiz.Answers) (QuizOutcome, error) {
	var outcome QuizOutcome
	_, err := s.update(userID, courseID, chapterID, func(p progress.CourseProgress, ch models.Chapter, total int) (progress.CourseProgress, error) {
		q, err := ch.QuizDefinition()
		if err != nil {
			return p, err
		}
		if q == nil {
			return p, ErrNoQuiz
		}

		result, err := quiz.Grade(*q, answers)
		if err != nil {
			return p, err
		}

		p = progress.RecordQuizAttempt(p, ch.Key(), result, s.now())
		passed := quiz.Passed(result, *q)
		if passed {
			if p, err = progress.MarkChapterComplete(p, ch.Key(), true, total); err != nil {
				return p, err
			}
		}

		outcome = QuizOutcome{Result: result, Passed: passed, PassingScore: q.PassingScore, Progress: p}
		return p, nil
	})
	return outcome, err
}

// ForceComplete is the admin override that completes a chapter regardless of
// its quiz.
func (s *LearningService) ForceComplete(userID, courseID, chapterID uint) (progress.CourseProgress, error) {
	return s.update(userID, courseID, chapterID, func(p progress.CourseProgress, ch models.Chapter, total int) (progress.CourseProgress, error) {
		return progress.MarkChapterComplete(p, ch.Key(), true, total)
	})
}

func (s *LearningService) ListProgress(userID uint) ([]models.CourseProgress, error) {
	var records []models.CourseProgress
	err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&records).Error
	return records, err
}

type progressUpdate func(p progress.CourseProgress, ch models.Chapter, totalChapters int) (progress.CourseProgress, error)

// update runs fn against the learner's locked progress row and saves the
// returned snapshot.
func (s *LearningService) update(userID, courseID, chapterID uint, fn progressUpdate) (progress.CourseProgress, error) {
	var out progress.CourseProgress
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requirePurchase(tx, userID, courseID); err != nil {
			return err
		}

		chapters, err := listChapters(tx, courseID)
		if err != nil {
			return err
		}
		var chapter *models.Chapter
		for i := range chapters {
			if chapters[i].ID == chapterID {
				chapter = &chapters[i]
				break
			}
		}
		if chapter == nil {
			return ErrUnknownChapter
		}

		record, err := s.loadProgress(tx, userID, courseID, true)
		if err != nil {
			return err
		}

		next, err := fn(record.Snapshot(), *chapter, len(chapters))
		if err != nil {
			return err
		}
		record.Apply(next)
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *LearningService) requirePurchase(db *gorm.DB, userID, courseID uint) error {
	ok, err := HasPurchased(db, userID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPurchased
	}
	return nil
}

// loadProgress returns the learner's progress row, creating an empty one if
// the purchase predates progress tracking.
func (s *LearningService) loadProgress(db *gorm.DB, userID, courseID uint, lock bool) (*models.CourseProgress, error) {
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var record models.CourseProgress
	err := query.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = models.CourseProgress{UserID: userID, CourseID: courseID}
	record.Apply(progress.CourseProgress{})
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
