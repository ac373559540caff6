package models

import (
	"encoding/json"
	"strconv"

	"coursehub/backend/quiz"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `json:"description"`
	Category      string    `gorm:"index" json:"category"`
	Price         int64     `json:"price"` // minor currency units
	Currency      string    `gorm:"default:NGN" json:"currency"`
	InstructorID  uint      `gorm:"index" json:"instructor_id"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	ThumbnailPath string    `json:"-"`
	Published     bool      `gorm:"default:false;index" json:"published"`
	EnrolledCount int       `gorm:"default:0" json:"enrolled_count"`
	Chapters      []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	gorm.Model
	CourseID      uint           `gorm:"index" json:"course_id"`
	Title         string         `gorm:"not null" json:"title"`
	Content       string         `json:"content"` // rich text HTML
	SequenceOrder int            `json:"sequence_order"`
	Quiz          datatypes.JSON `json:"-"`
}

// Key is the chapter identifier used inside progress snapshots.
func (ch Chapter) Key() string {
	return strconv.FormatUint(uint64(ch.ID), 10)
}

func (ch Chapter) HasQuiz() bool {
	return len(ch.Quiz) > 0 && string(ch.Quiz) != "null"
}

// QuizDefinition decodes the stored quiz, or returns nil if the chapter has none.
func (ch Chapter) QuizDefinition() (*quiz.Quiz, error) {
	if !ch.HasQuiz() {
		return nil, nil
	}
	var q quiz.Quiz
	if err := json.Unmarshal(ch.Quiz, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (ch *Chapter) SetQuiz(q *quiz.Quiz) error {
	if q == nil {
		ch.Quiz = nil
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	ch.Quiz = datatypes.JSON(data)
	return nil
}
