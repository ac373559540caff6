package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/payment"
	"coursehub/backend/ratelimit"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
)

// paidGateway reports every known reference as paid in full.
type paidGateway struct{}

func (paidGateway) Verify(_ context.Context, reference string) (payment.Verification, error) {
	var p models.Purchase
	if err := db.Where("reference = ?", reference).First(&p).Error; err != nil {
		return payment.Verification{}, payment.ErrVerificationFailed
	}
	return payment.Verification{Reference: reference, Status: payment.StatusSuccess, Amount: p.Amount, Currency: p.Currency, PaidAt: time.Now()}, nil
}

type nopMedia struct{}

func (nopMedia) Upload(_ context.Context, objectPath string, _ []byte, _ string) (string, error) {
	return "https://cdn.test/" + objectPath, nil
}

func (nopMedia) Delete(context.Context, string) error { return nil }

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

func setup() {
	cfg = &config.Config{JWTSecret: "testsecret", JWTTTL: time.Hour}

	var err error
	db, err = gorm.Open(sqlite.Open("file:routes?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := utils.Migrate(db); err != nil {
		panic(err)
	}

	quiet := log.New(io.Discard, "", 0)
	app = fiber.New()
	SetupRoutes(app, Deps{
		DB:        db,
		Cfg:       cfg,
		Logger:    quiet,
		Limiter:   ratelimit.NewMemoryLimiter(1000, time.Minute),
		Courses:   services.NewCourseService(db, nopMedia{}, quiet),
		Purchases: services.NewPurchaseService(db, paidGateway{}, quiet),
		Learning:  services.NewLearningService(db),
		Admin:     services.NewAdminService(db),
	})
}

func teardown() {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func doJSON(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func data(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := result["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", result)
	return d
}

func register(t *testing.T, name, role string) string {
	t.Helper()
	status, result := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, status, "%v", result)
	return data(t, result)["token"].(string)
}

func createAdmin(t *testing.T, name string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.User{Name: name, Email: name + "@example.com", PasswordHash: string(hash), Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	token, err := utils.GenerateJWTToken(admin, cfg)
	require.NoError(t, err)
	return token
}

func TestAuth(t *testing.T) {
	token := register(t, "alice", "")

	status, _ := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name": "alice again", "email": "ALICE@example.com", "password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, result := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name": "x", "email": "not-an-email", "password": "short", "role": "admin",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	details := result["details"].(map[string]interface{})
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "role")

	status, result = doJSON(t, "POST", "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, data(t, result)["token"])

	status, _ = doJSON(t, "POST", "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, result = doJSON(t, "GET", "/api/user/profile", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	profile := data(t, result)
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.Equal(t, models.RoleStudent, profile["role"])
	assert.NotContains(t, profile, "PasswordHash")

	status, result = doJSON(t, "PUT", "/api/user/profile", token, map[string]string{"bio": "Learning Go"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Learning Go", data(t, result)["bio"])

	status, _ = doJSON(t, "GET", "/api/user/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCourseLifecycle(t *testing.T) {
	instructor := register(t, "ines", models.RoleInstructor)
	student := register(t, "stan", "")

	status, _ := doJSON(t, "POST", "/api/instructor/courses", student, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := doJSON(t, "POST", "/api/instructor/courses", instructor, map[string]interface{}{
		"title": "Practical Go", "description": "Services and tooling", "category": "programming", "price": 5000,
	})
	require.Equal(t, fiber.StatusCreated, status, "%v", result)
	courseID := int(data(t, result)["ID"].(float64))
	base := fmt.Sprintf("/api/instructor/courses/%d", courseID)

	status, _ = doJSON(t, "POST", base+"/publish", instructor, nil)
	assert.Equal(t, fiber.StatusConflict, status, "publishing needs a chapter")

	status, result = doJSON(t, "POST", base+"/chapters", instructor, map[string]interface{}{
		"title": "Broken quiz",
		"quiz":  map[string]interface{}{"title": "Q", "passingScore": 50, "questions": []interface{}{}},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "%v", result)

	for name, question := range map[string]map[string]interface{}{
		"unknown type":       {"type": "essay", "question": "Explain channels"},
		"non-boolean answer": {"type": "true_false", "question": "Maps are ordered", "correctAnswer": "yes"},
	} {
		status, result = doJSON(t, "POST", base+"/chapters", instructor, map[string]interface{}{
			"title": "Rejected quiz",
			"quiz":  map[string]interface{}{"title": "Q", "passingScore": 50, "questions": []interface{}{question}},
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status, "%s: %v", name, result)
	}

	status, result = doJSON(t, "POST", base+"/chapters", instructor, map[string]interface{}{
		"title":   "Goroutines",
		"content": "<p>go func()</p>",
		"quiz": map[string]interface{}{
			"title":        "Check",
			"passingScore": 50,
			"questions": []interface{}{
				map[string]interface{}{"type": "multiple_choice", "question": "Keyword to start a goroutine?", "options": []string{"go", "async"}, "correctAnswer": "go", "explanation": "go starts a goroutine"},
				map[string]interface{}{"type": "true_false", "question": "Channels are typed", "correctAnswer": "true"},
			},
		},
	})
	require.Equal(t, fiber.StatusCreated, status, "%v", result)
	quizChapter := int(data(t, result)["id"].(float64))

	status, result = doJSON(t, "POST", base+"/chapters", instructor, map[string]interface{}{"title": "Wrap up", "content": "<p>done</p>"})
	require.Equal(t, fiber.StatusCreated, status, "%v", result)
	plainChapter := int(data(t, result)["id"].(float64))

	status, _ = doJSON(t, "POST", base+"/publish", instructor, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, result = doJSON(t, "GET", "/api/courses?search=tooling", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["total"])

	status, result = doJSON(t, "GET", fmt.Sprintf("/api/courses/%d", courseID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	outline := data(t, result)["chapters"].([]interface{})
	require.Len(t, outline, 2)
	first := outline[0].(map[string]interface{})
	assert.Equal(t, true, first["has_quiz"])
	assert.NotContains(t, first, "content")
	assert.NotContains(t, first, "quiz")

	learnBase := fmt.Sprintf("/api/learn/courses/%d", courseID)
	status, _ = doJSON(t, "GET", learnBase, student, nil)
	assert.Equal(t, fiber.StatusForbidden, status, "not purchased yet")

	status, result = doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/checkout", courseID), student, nil)
	require.Equal(t, fiber.StatusCreated, status, "%v", result)
	reference := data(t, result)["reference"].(string)
	assert.Equal(t, models.PurchasePending, data(t, result)["status"])

	status, result = doJSON(t, "POST", "/api/purchases/verify", student, map[string]string{"reference": reference})
	require.Equal(t, fiber.StatusOK, status, "%v", result)
	assert.Equal(t, models.PurchaseCompleted, data(t, result)["status"])

	status, _ = doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/checkout", courseID), student, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, result = doJSON(t, "GET", learnBase, student, nil)
	require.Equal(t, fiber.StatusOK, status)
	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "correctAnswer")
	assert.Contains(t, string(body), "go func()")

	status, _ = doJSON(t, "POST", fmt.Sprintf("%s/chapters/%d/complete", learnBase, quizChapter), student, map[string]bool{"completed": true})
	assert.Equal(t, fiber.StatusConflict, status, "quiz not passed yet")

	status, _ = doJSON(t, "POST", fmt.Sprintf("%s/chapters/%d/complete", learnBase, 999999), student, map[string]bool{"completed": true})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, result = doJSON(t, "POST", fmt.Sprintf("%s/chapters/%d/quiz", learnBase, quizChapter), student, map[string]interface{}{
		"answers": map[string]string{"0": "go", "1": "false"},
	})
	require.Equal(t, fiber.StatusOK, status, "%v", result)
	outcome := data(t, result)
	assert.Equal(t, true, outcome["passed"])
	graded := outcome["result"].(map[string]interface{})
	assert.Equal(t, float64(50), graded["percentage"])
	review := graded["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "go starts a goroutine", review["explanation"])
	assert.Equal(t, float64(50), outcome["progress"].(map[string]interface{})["progress"])

	status, result = doJSON(t, "POST", fmt.Sprintf("%s/chapters/%d/complete", learnBase, plainChapter), student, map[string]bool{"completed": true})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(100), data(t, result)["progress"])

	status, _ = doJSON(t, "POST", fmt.Sprintf("%s/chapters/%d/complete", learnBase, plainChapter), student, map[string]interface{}{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, result = doJSON(t, "GET", "/api/learn/progress", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]interface{}), 1)

	status, _ = doJSON(t, "DELETE", base, instructor, nil)
	assert.Equal(t, fiber.StatusConflict, status, "course has purchases")
}

func TestAdmin(t *testing.T) {
	admin := createAdmin(t, "root")
	student := register(t, "mallory", "")

	status, _ := doJSON(t, "GET", "/api/admin/stats", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := doJSON(t, "GET", "/api/admin/stats", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, data(t, result), "revenue_month")

	status, result = doJSON(t, "GET", "/api/admin/users?role=student", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	var target float64
	for _, u := range result["data"].([]interface{}) {
		user := u.(map[string]interface{})
		if user["email"] == "mallory@example.com" {
			target = user["ID"].(float64)
		}
	}
	require.NotZero(t, target)

	status, _ = doJSON(t, "PUT", fmt.Sprintf("/api/admin/users/%d/role", int(target)), admin, map[string]string{"role": "owner"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, result = doJSON(t, "PUT", fmt.Sprintf("/api/admin/users/%d/ban", int(target)), admin, map[string]bool{"banned": true})
	require.Equal(t, fiber.StatusOK, status, "%v", result)

	status, _ = doJSON(t, "GET", "/api/user/profile", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, "POST", "/api/auth/login", "", map[string]string{"email": "mallory@example.com", "password": "password123"})
	assert.Equal(t, fiber.StatusForbidden, status)
}
