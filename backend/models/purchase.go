package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseAbandoned = "abandoned"
)

type Purchase struct {
	gorm.Model
	UserID    uint       `gorm:"index" json:"user_id"`
	CourseID  uint       `gorm:"index" json:"course_id"`
	Course    *Course    `json:"course,omitempty"`
	Reference string     `gorm:"uniqueIndex;not null" json:"reference"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `gorm:"default:pending;index" json:"status"` // pending, completed, abandoned
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}
