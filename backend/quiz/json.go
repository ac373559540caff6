package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type wireQuestion struct {
	Type          Kind     `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type wireQuiz struct {
	Title        string         `json:"title"`
	PassingScore int            `json:"passingScore"`
	Questions    []wireQuestion `json:"questions"`
}

func (q Quiz) MarshalJSON() ([]byte, error) {
	w := wireQuiz{
		Title:        q.Title,
		PassingScore: q.PassingScore,
		Questions:    make([]wireQuestion, 0, len(q.Questions)),
	}
	for i, question := range q.Questions {
		wq, err := toWire(question)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		w.Questions = append(w.Questions, wq)
	}
	return json.Marshal(w)
}

func (q *Quiz) UnmarshalJSON(data []byte) error {
	var w wireQuiz
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	questions := make([]Question, 0, len(w.Questions))
	for i, wq := range w.Questions {
		question, err := fromWire(wq)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, question)
	}

	*q = Quiz{Title: w.Title, PassingScore: w.PassingScore, Questions: questions}
	return nil
}

func toWire(question Question) (wireQuestion, error) {
	switch v := question.(type) {
	case MultipleChoice:
		return wireQuestion{
			Type:          KindMultipleChoice,
			Question:      v.Text,
			Options:       v.Options,
			CorrectAnswer: v.CorrectAnswer,
			Explanation:   v.Explanation,
		}, nil
	case TrueFalse:
		return wireQuestion{
			Type:          KindTrueFalse,
			Question:      v.Text,
			CorrectAnswer: strconv.FormatBool(v.CorrectAnswer),
			Explanation:   v.Explanation,
		}, nil
	case FillBlank:
		return wireQuestion{
			Type:          KindFillBlank,
			Question:      v.Text,
			CorrectAnswer: v.CorrectAnswer,
			Explanation:   v.Explanation,
		}, nil
	default:
		return wireQuestion{}, ErrUnknownQuestionType
	}
}

func fromWire(wq wireQuestion) (Question, error) {
	switch wq.Type {
	case KindMultipleChoice:
		return MultipleChoice{
			Text:          wq.Question,
			Options:       wq.Options,
			CorrectAnswer: wq.CorrectAnswer,
			Explanation:   wq.Explanation,
		}, nil
	case KindTrueFalse:
		// Only the literal strings are accepted, not every form ParseBool takes.
		if wq.CorrectAnswer != "true" && wq.CorrectAnswer != "false" {
			return nil, fmt.Errorf("%w: true_false answer must be \"true\" or \"false\"", ErrInvalidQuiz)
		}
		return TrueFalse{
			Text:          wq.Question,
			CorrectAnswer: wq.CorrectAnswer == "true",
			Explanation:   wq.Explanation,
		}, nil
	case KindFillBlank:
		return FillBlank{
			Text:          wq.Question,
			CorrectAnswer: wq.CorrectAnswer,
			Explanation:   wq.Explanation,
		}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownQuestionType, wq.Type)
	}
}
