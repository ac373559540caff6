package services

import (
	"context"
	"testing"

	"coursehub/backend/models"
	"coursehub/backend/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCourse_CreatePublishAndCatalogue(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	svc := NewCourseService(db, newFakeMedia(), testLogger())

	price := int64(2500)
	course, err := svc.Create(instructor.ID, CourseInput{Title: "  Intro to Go ", Description: "Concurrency basics", Category: "programming", Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", course.Title)
	assert.Equal(t, "NGN", course.Currency)

	_, err = svc.SetPublished(instructor, course.ID, true)
	assert.ErrorIs(t, err, ErrNoChapters)

	_, err = svc.AddChapter(instructor, course.ID, ChapterInput{Title: "Goroutines", Quiz: fourQuestionQuiz()})
	require.NoError(t, err)
	_, err = svc.SetPublished(instructor, course.ID, true)
	require.NoError(t, err)

	courses, total, err := svc.ListPublished(CatalogueFilter{Search: "CONCURRENCY"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, courses, 1)

	_, total, err = svc.ListPublished(CatalogueFilter{Category: "cooking"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	got, err := svc.GetPublished(course.ID)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 1)
	assert.True(t, got.Chapters[0].HasQuiz())
}

func TestCourse_OwnershipAndValidation(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	rival := createUser(t, db, "bob", "instructor")
	admin := createUser(t, db, "root", "admin")
	svc := NewCourseService(db, newFakeMedia(), testLogger())

	course, err := svc.Create(instructor.ID, CourseInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.Update(rival, course.ID, CourseInput{Title: "Stolen"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(admin, course.ID, CourseInput{Category: "ops"})
	require.NoError(t, err)
	assert.Equal(t, "ops", updated.Category)

	_, err = svc.AddChapter(instructor, course.ID, ChapterInput{Title: "Bad", Quiz: &quiz.Quiz{Title: "Empty", PassingScore: 50}})
	assert.ErrorIs(t, err, quiz.ErrInvalidQuiz)

	_, err = svc.UpdateChapter(instructor, course.ID, 4242, ChapterInput{Title: "x"})
	assert.ErrorIs(t, err, ErrUnknownChapter)

	_, err = svc.Get(instructor, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourse_ChapterChangesReconcileProgress(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	student := createUser(t, db, "sam", "student")
	course, chapters := seedCourse(t, db, instructor, 0, 2, -1)
	grantPurchase(t, db, student, course)

	learning := NewLearningService(db)
	p, err := learning.CompleteChapter(student.ID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Progress)

	svc := NewCourseService(db, newFakeMedia(), testLogger())
	_, err = svc.AddChapter(instructor, course.ID, ChapterInput{Title: "Extra"})
	require.NoError(t, err)

	var record models.CourseProgress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&record).Error)
	assert.Equal(t, 33, record.Progress)

	require.NoError(t, svc.DeleteChapter(instructor, course.ID, chapters[0].ID))
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&record).Error)
	assert.Equal(t, 0, record.Progress)
	assert.Empty(t, record.Snapshot().CompletedChapters)
}

func TestCourse_UpdateChapterQuiz(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	course, chapters := seedCourse(t, db, instructor, 0, 1, 0)
	svc := NewCourseService(db, newFakeMedia(), testLogger())

	ch, err := svc.UpdateChapter(instructor, course.ID, chapters[0].ID, ChapterInput{RemoveQuiz: true})
	require.NoError(t, err)
	assert.False(t, ch.HasQuiz())

	ch, err = svc.UpdateChapter(instructor, course.ID, chapters[0].ID, ChapterInput{Content: "new body", Quiz: fourQuestionQuiz()})
	require.NoError(t, err)
	assert.True(t, ch.HasQuiz())
	assert.Equal(t, "new body", ch.Content)

	q, err := ch.QuizDefinition()
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Len(t, q.Questions, 4)
}

func TestCourse_ThumbnailAndDelete(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	student := createUser(t, db, "sam", "student")
	host := newFakeMedia()
	svc := NewCourseService(db, host, testLogger())

	course, err := svc.Create(instructor.ID, CourseInput{Title: "Pics"})
	require.NoError(t, err)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	first, err := svc.SetThumbnail(context.Background(), instructor, course.ID, png)
	require.NoError(t, err)
	firstPath := first.ThumbnailPath
	assert.Contains(t, first.ThumbnailURL, firstPath)

	second, err := svc.SetThumbnail(context.Background(), instructor, course.ID, png)
	require.NoError(t, err)
	assert.NotEqual(t, firstPath, second.ThumbnailPath)
	assert.Equal(t, []string{firstPath}, host.deleted)

	_, err = svc.SetThumbnail(context.Background(), instructor, course.ID, []byte("plain text"))
	assert.Error(t, err)

	grantPurchase(t, db, student, *course)
	assert.ErrorIs(t, svc.Delete(context.Background(), instructor, course.ID), ErrHasPurchases)

	require.NoError(t, db.Where("course_id = ?", course.ID).Delete(&models.Purchase{}).Error)
	require.NoError(t, svc.Delete(context.Background(), instructor, course.ID))
	assert.Equal(t, []string{firstPath, second.ThumbnailPath}, host.deleted)
}

func progressRow(t *testing.T, db *gorm.DB, userID, courseID uint) models.CourseProgress {
	t.Helper()
	var record models.CourseProgress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error)
	return record
}

func TestCourse_AttachingQuizWithdrawsCompletion(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	student := createUser(t, db, "sam", "student")
	course, chapters := seedCourse(t, db, instructor, 0, 2, -1)
	grantPurchase(t, db, student, course)

	learning := NewLearningService(db)
	_, err := learning.CompleteChapter(student.ID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)

	svc := NewCourseService(db, newFakeMedia(), testLogger())
	_, err = svc.UpdateChapter(instructor, course.ID, chapters[0].ID, ChapterInput{Quiz: fourQuestionQuiz()})
	require.NoError(t, err)

	snap := progressRow(t, db, student.ID, course.ID).Snapshot()
	assert.Empty(t, snap.CompletedChapters)
	assert.Empty(t, snap.QuizScores)
	assert.Equal(t, 0, snap.Progress)

	_, err = learning.CompleteChapter(student.ID, course.ID, chapters[0].ID, true)
	assert.ErrorIs(t, err, ErrQuizNotPassed)
}

func TestCourse_ReplacingQuizDiscardsOldScore(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	student := createUser(t, db, "sam", "student")
	course, chapters := seedCourse(t, db, instructor, 0, 2, 0)
	grantPurchase(t, db, student, course)

	learning := NewLearningService(db)
	out, err := learning.SubmitQuiz(student.ID, course.ID, chapters[0].ID, quiz.Answers{0: "4", 1: "9", 2: "true"})
	require.NoError(t, err)
	require.True(t, out.Passed)

	svc := NewCourseService(db, newFakeMedia(), testLogger())

	// Saving the same quiz again leaves learners alone.
	_, err = svc.UpdateChapter(instructor, course.ID, chapters[0].ID, ChapterInput{Title: "Renamed", Quiz: fourQuestionQuiz()})
	require.NoError(t, err)
	snap := progressRow(t, db, student.ID, course.ID).Snapshot()
	assert.Equal(t, []string{chapters[0].Key()}, snap.CompletedChapters)
	assert.Equal(t, 75, snap.QuizScores[chapters[0].Key()].Percentage)

	stricter := fourQuestionQuiz()
	stricter.PassingScore = 100
	_, err = svc.UpdateChapter(instructor, course.ID, chapters[0].ID, ChapterInput{Quiz: stricter})
	require.NoError(t, err)

	snap = progressRow(t, db, student.ID, course.ID).Snapshot()
	assert.Empty(t, snap.CompletedChapters)
	assert.NotContains(t, snap.QuizScores, chapters[0].Key())
	assert.Equal(t, 0, snap.Progress)
}

func TestCourse_RemovingQuizKeepsCompletion(t *testing.T) {
	db := newTestDB(t)
	instructor := createUser(t, db, "ada", "instructor")
	student := createUser(t, db, "sam", "student")
	course, chapters := seedCourse(t, db, instructor, 0, 2, 0)
	grantPurchase(t, db, student, course)

	learning := NewLearningService(db)
	_, err := learning.SubmitQuiz(student.ID, course.ID, chapters[0].ID, quiz.Answers{0: "4", 1: "9", 2: "true", 3: "paris"})
	require.NoError(t, err)

	svc := NewCourseService(db, newFakeMedia(), testLogger())
	_, err = svc.UpdateChapter(instructor, course.ID, chapters[0].ID, ChapterInput{RemoveQuiz: true})
	require.NoError(t, err)

	snap := progressRow(t, db, student.ID, course.ID).Snapshot()
	assert.Equal(t, []string{chapters[0].Key()}, snap.CompletedChapters)
	assert.Empty(t, snap.QuizScores)
	assert.Equal(t, 50, snap.Progress)
}
