package models

import "gorm.io/gorm"

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:student" json:"role"` // student, instructor, admin
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatar_url"`
	Banned       bool   `gorm:"default:false" json:"banned"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
