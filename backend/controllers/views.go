package controllers

import (
	"coursehub/backend/models"
	"coursehub/backend/quiz"
)

type chapterView struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	SequenceOrder int              `json:"sequence_order"`
	HasQuiz       bool             `json:"has_quiz"`
	Content       string           `json:"content,omitempty"`
	Quiz          *quiz.PublicQuiz `json:"quiz,omitempty"`
}

type instructorChapterView struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	SequenceOrder int        `json:"sequence_order"`
	Content       string     `json:"content"`
	Quiz          *quiz.Quiz `json:"quiz,omitempty"`
}

type courseView struct {
	models.Course
	Chapters interface{} `json:"chapters"`
}

// outlineChapters is the catalogue view: titles only.
func outlineChapters(chapters []models.Chapter) []chapterView {
	out := make([]chapterView, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, chapterView{ID: ch.ID, Title: ch.Title, SequenceOrder: ch.SequenceOrder, HasQuiz: ch.HasQuiz()})
	}
	return out
}

// learnerChapters carries content and quizzes with the answers removed.
func learnerChapters(chapters []models.Chapter) ([]chapterView, error) {
	out := make([]chapterView, 0, len(chapters))
	for _, ch := range chapters {
		view := chapterView{ID: ch.ID, Title: ch.Title, SequenceOrder: ch.SequenceOrder, Content: ch.Content}
		q, err := ch.QuizDefinition()
		if err != nil {
			return nil, err
		}
		if q != nil {
			public := quiz.Redact(*q)
			view.HasQuiz = true
			view.Quiz = &public
		}
		out = append(out, view)
	}
	return out, nil
}

func instructorChapter(ch models.Chapter) (instructorChapterView, error) {
	q, err := ch.QuizDefinition()
	if err != nil {
		return instructorChapterView{}, err
	}
	return instructorChapterView{ID: ch.ID, Title: ch.Title, SequenceOrder: ch.SequenceOrder, Content: ch.Content, Quiz: q}, nil
}
