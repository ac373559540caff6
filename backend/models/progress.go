package models

import (
	"coursehub/backend/progress"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseProgress is one learner's progress in one purchased course.
type CourseProgress struct {
	gorm.Model
	UserID            uint                                              `gorm:"uniqueIndex:idx_progress_user_course" json:"user_id"`
	CourseID          uint                                              `gorm:"uniqueIndex:idx_progress_user_course" json:"course_id"`
	CompletedChapters datatypes.JSONType[[]string]                      `json:"completed_chapters"`
	QuizScores        datatypes.JSONType[map[string]progress.QuizScore] `json:"quiz_scores"`
	Progress          int                                               `gorm:"default:0" json:"progress"`
}

func (m CourseProgress) Snapshot() progress.CourseProgress {
	return progress.CourseProgress{
		CompletedChapters: m.CompletedChapters.Data(),
		Progress:          m.Progress,
		QuizScores:        m.QuizScores.Data(),
	}.Clone()
}

func (m *CourseProgress) Apply(p progress.CourseProgress) {
	p = p.Clone()
	if p.CompletedChapters == nil {
		p.CompletedChapters = []string{}
	}
	m.CompletedChapters = datatypes.NewJSONType(p.CompletedChapters)
	m.QuizScores = datatypes.NewJSONType(p.QuizScores)
	m.Progress = p.Progress
}
