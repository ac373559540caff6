package quiz

import (
	"fmt"
	"strings"
)

// Validate checks an instructor-authored quiz before it is stored.
func Validate(q Quiz) error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return fmt.Errorf("%w: passing score must be between 0 and 100", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuiz, ErrNoQuestions)
	}

	for i, question := range q.Questions {
		if question == nil {
			return fmt.Errorf("%w: question %d: %w", ErrInvalidQuiz, i, ErrUnknownQuestionType)
		}
		if strings.TrimSpace(question.Prompt()) == "" {
			return fmt.Errorf("%w: question %d: prompt is required", ErrInvalidQuiz, i)
		}

		switch v := question.(type) {
		case MultipleChoice:
			if err := validateOptions(v); err != nil {
				return fmt.Errorf("%w: question %d: %v", ErrInvalidQuiz, i, err)
			}
		case TrueFalse:
		case FillBlank:
			if strings.TrimSpace(v.CorrectAnswer) == "" {
				return fmt.Errorf("%w: question %d: answer is required", ErrInvalidQuiz, i)
			}
		default:
			return fmt.Errorf("%w: question %d: %w", ErrInvalidQuiz, i, ErrUnknownQuestionType)
		}
	}
	return nil
}

func validateOptions(q MultipleChoice) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("at least 2 options are required")
	}

	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("options must not be blank")
		}
		if seen[opt] {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = true
	}

	if !seen[q.CorrectAnswer] {
		return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
	}
	return nil
}
