package services

import (
	"errors"
	"time"

	"coursehub/backend/models"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, now: time.Now}
}

type Stats struct {
	Users          int64 `json:"users"`
	Instructors    int64 `json:"instructors"`
	BannedUsers    int64 `json:"banned_users"`
	Courses        int64 `json:"courses"`
	Published      int64 `json:"published_courses"`
	Purchases      int64 `json:"completed_purchases"`
	RevenueToday   int64 `json:"revenue_today"`
	RevenueMonth   int64 `json:"revenue_month"`
	RevenueAllTime int64 `json:"revenue_all_time"`
}

func (s *AdminService) ListUsers(role string, page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error
	return users, total, err
}

// SetBanned bans or reinstates a user. Admins cannot ban themselves.
func (s *AdminService) SetBanned(admin models.User, userID uint, banned bool) (*models.User, error) {
	if admin.ID == userID {
		return nil, ErrForbidden
	}
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	user.Banned = banned
	if err := s.db.Model(user).Update("banned", banned).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) SetRole(admin models.User, userID uint, role string) (*models.User, error) {
	switch role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	default:
		return nil, ErrInvalidRole
	}
	if admin.ID == userID {
		return nil, ErrForbidden
	}

	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) ListCourses(page, pageSize int) ([]models.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var courses []models.Course
	err := s.db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&courses).Error
	return courses, total, err
}

// Stats summarises the marketplace. Revenue windows follow the server's
// local calendar.
func (s *AdminService) Stats() (Stats, error) {
	var st Stats
	t := now.With(s.now())

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.Users, s.db.Model(&models.User{})},
		{&st.Instructors, s.db.Model(&models.User{}).Where("role = ?", models.RoleInstructor)},
		{&st.BannedUsers, s.db.Model(&models.User{}).Where("banned = ?", true)},
		{&st.Courses, s.db.Model(&models.Course{})},
		{&st.Published, s.db.Model(&models.Course{}).Where("published = ?", true)},
		{&st.Purchases, s.db.Model(&models.Purchase{}).Where("status = ?", models.PurchaseCompleted)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return st, err
		}
	}

	revenue := []struct {
		dst  *int64
		from time.Time
	}{
		{&st.RevenueToday, t.BeginningOfDay()},
		{&st.RevenueMonth, t.BeginningOfMonth()},
		{&st.RevenueAllTime, time.Time{}},
	}
	for _, r := range revenue {
		query := s.db.Model(&models.Purchase{}).
			Where("status = ?", models.PurchaseCompleted).
			Select("COALESCE(SUM(amount), 0)")
		if !r.from.IsZero() {
			query = query.Where("paid_at >= ?", r.from.UTC())
		}
		if err := query.Scan(r.dst).Error; err != nil {
			return st, err
		}
	}
	return st, nil
}

func (s *AdminService) user(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
