package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade scores answers against q. Questions are matched to answers by index.
// A quiz without questions is rejected instead of producing an undefined
// percentage.
func Grade(q Quiz, answers Answers) (Result, error) {
	total := len(q.Questions)
	if total == 0 {
		return Result{}, ErrNoQuestions
	}

	result := Result{
		TotalQuestions: total,
		Questions:      make([]QuestionResult, 0, total),
	}

	for i, question := range q.Questions {
		answer, answered := answers[i]

		var correct string
		var isCorrect bool
		switch v := question.(type) {
		case MultipleChoice:
			correct = v.CorrectAnswer
			isCorrect = answered && answer == correct
		case TrueFalse:
			correct = strconv.FormatBool(v.CorrectAnswer)
			isCorrect = answered && answer == correct
		case FillBlank:
			correct = v.CorrectAnswer
			isCorrect = answered && normalize(answer) == normalize(correct)
		default:
			return Result{}, fmt.Errorf("question %d: %w", i, ErrUnknownQuestionType)
		}

		if isCorrect {
			result.Score++
		}
		result.Questions = append(result.Questions, QuestionResult{
			Question:      question.Prompt(),
			UserAnswer:    answer,
			Answered:      answered,
			CorrectAnswer: correct,
			IsCorrect:     isCorrect,
			Explanation:   question.Explain(),
		})
	}

	result.Percentage = Percentage(result.Score, total)
	return result, nil
}

// Percentage returns part/total as a whole percentage rounded half up.
// A zero total yields 0.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
