// Package quiz holds chapter quiz definitions and grades learner submissions.
package quiz

import "errors"

var (
	ErrNoQuestions         = errors.New("quiz has no questions")
	ErrInvalidQuiz         = errors.New("invalid quiz")
	ErrUnknownQuestionType = errors.New("unknown question type")
)

// Kind is the wire discriminator of a question.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
	KindFillBlank      Kind = "fill_blank"
)

type Quiz struct {
	Title        string
	PassingScore int
	Questions    []Question
}

// Question is implemented only by the variants in this package.
type Question interface {
	Kind() Kind
	Prompt() string
	Explain() string
	isQuestion()
}

type MultipleChoice struct {
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

type TrueFalse struct {
	Text          string
	CorrectAnswer bool
	Explanation   string
}

// FillBlank answers are compared after trimming and case folding.
type FillBlank struct {
	Text          string
	CorrectAnswer string
	Explanation   string
}

func (MultipleChoice) Kind() Kind        { return KindMultipleChoice }
func (q MultipleChoice) Prompt() string  { return q.Text }
func (q MultipleChoice) Explain() string { return q.Explanation }
func (MultipleChoice) isQuestion()       {}

func (TrueFalse) Kind() Kind        { return KindTrueFalse }
func (q TrueFalse) Prompt() string  { return q.Text }
func (q TrueFalse) Explain() string { return q.Explanation }
func (TrueFalse) isQuestion()       {}

func (FillBlank) Kind() Kind        { return KindFillBlank }
func (q FillBlank) Prompt() string  { return q.Text }
func (q FillBlank) Explain() string { return q.Explanation }
func (FillBlank) isQuestion()       {}

// Answers maps a question index to the submitted answer. A missing key means
// the question was left unanswered.
type Answers map[int]string

type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	Answered      bool   `json:"answered"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation,omitempty"`
}

type Result struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     int              `json:"percentage"`
	Questions      []QuestionResult `json:"results"`
}

// Passed reports whether r meets the quiz passing score.
func Passed(r Result, q Quiz) bool {
	return r.Percentage >= q.PassingScore
}

// PublicQuestion is what a learner sees before submitting.
type PublicQuestion struct {
	Type     Kind     `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

type PublicQuiz struct {
	Title        string           `json:"title"`
	PassingScore int              `json:"passingScore"`
	Questions    []PublicQuestion `json:"questions"`
}

// Redact strips correct answers and explanations.
func Redact(q Quiz) PublicQuiz {
	out := PublicQuiz{
		Title:        q.Title,
		PassingScore: q.PassingScore,
		Questions:    make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		pq := PublicQuestion{Type: question.Kind(), Question: question.Prompt()}
		if mc, ok := question.(MultipleChoice); ok {
			pq.Options = append([]string(nil), mc.Options...)
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}
