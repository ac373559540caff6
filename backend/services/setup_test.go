package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"

	"coursehub/backend/models"
	"coursehub/backend/payment"
	"coursehub/backend/quiz"
	"coursehub/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))
	return db
}

func testLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func fourQuestionQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		Title:        "Checkpoint",
		PassingScore: 70,
		Questions: []quiz.Question{
			quiz.MultipleChoice{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			quiz.MultipleChoice{Text: "3*3?", Options: []string{"6", "9"}, CorrectAnswer: "9"},
			quiz.TrueFalse{Text: "Go is compiled", CorrectAnswer: true},
			quiz.FillBlank{Text: "Capital of France", CorrectAnswer: "Paris"},
		},
	}
}

// seedCourse creates a published course with chapters; the chapter at
// quizAt (if >= 0) carries fourQuestionQuiz.
func seedCourse(t *testing.T, db *gorm.DB, instructor models.User, price int64, chapters int, quizAt int) (models.Course, []models.Chapter) {
	t.Helper()
	course := models.Course{Title: "Go for beginners", InstructorID: instructor.ID, Price: price, Currency: "NGN", Published: true}
	require.NoError(t, db.Create(&course).Error)

	var out []models.Chapter
	for i := 0; i < chapters; i++ {
		ch := models.Chapter{CourseID: course.ID, Title: fmt.Sprintf("Chapter %d", i+1), SequenceOrder: i + 1}
		if i == quizAt {
			require.NoError(t, ch.SetQuiz(fourQuestionQuiz()))
		}
		require.NoError(t, db.Create(&ch).Error)
		out = append(out, ch)
	}
	return course, out
}

func grantPurchase(t *testing.T, db *gorm.DB, user models.User, course models.Course) {
	t.Helper()
	p := models.Purchase{UserID: user.ID, CourseID: course.ID, Reference: payment.NewReference(), Amount: course.Price, Currency: course.Currency, Status: models.PurchaseCompleted}
	require.NoError(t, db.Create(&p).Error)
}

type fakeMedia struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploaded: map[string][]byte{}}
}

func (f *fakeMedia) Upload(_ context.Context, objectPath string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[objectPath] = data
	return "https://cdn.test/" + objectPath, nil
}

func (f *fakeMedia) Delete(_ context.Context, objectPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, objectPath)
	return nil
}

type fakeGateway struct {
	results map[string]payment.Verification
	calls   int
}

func (f *fakeGateway) Verify(_ context.Context, reference string) (payment.Verification, error) {
	f.calls++
	v, ok := f.results[reference]
	if !ok {
		return payment.Verification{}, payment.ErrVerificationFailed
	}
	return v, nil
}
