// Package progress tracks chapter completion and quiz scores for one learner
// in one course. Every function returns a fresh snapshot and leaves its input
// untouched.
package progress

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"coursehub/backend/quiz"
)

var ErrInvalidArgument = errors.New("invalid argument")

type QuizScore struct {
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	CompletedAt    time.Time `json:"completedAt"`
}

// CourseProgress is the persisted progress snapshot. CompletedChapters is kept
// sorted and free of duplicates.
type CourseProgress struct {
	CompletedChapters []string             `json:"completedChapters"`
	Progress          int                  `json:"progress"`
	QuizScores        map[string]QuizScore `json:"quizScores"`
}

// Percent is the completion formula shared by every caller.
func Percent(completed, total int) int {
	return quiz.Percentage(completed, total)
}

// IsCompleted reports whether chapterID is in the completed set.
func (p CourseProgress) IsCompleted(chapterID string) bool {
	for _, id := range p.CompletedChapters {
		if id == chapterID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p CourseProgress) Clone() CourseProgress {
	out := CourseProgress{
		CompletedChapters: append([]string(nil), p.CompletedChapters...),
		Progress:          p.Progress,
		QuizScores:        make(map[string]QuizScore, len(p.QuizScores)),
	}
	for k, v := range p.QuizScores {
		out.QuizScores[k] = v
	}
	return out
}

// MarkChapterComplete adds or removes chapterID from the completed set and
// recomputes Progress. It does not know about quizzes; callers check
// CanComplete first for quiz-gated chapters.
func MarkChapterComplete(p CourseProgress, chapterID string, completed bool, totalChapters int) (CourseProgress, error) {
	if chapterID == "" {
		return p, fmt.Errorf("%w: chapter id is empty", ErrInvalidArgument)
	}
	if totalChapters < 0 {
		return p, fmt.Errorf("%w: total chapters %d", ErrInvalidArgument, totalChapters)
	}

	out := p.Clone()
	out.CompletedChapters = normalizeSet(out.CompletedChapters)

	i := sort.SearchStrings(out.CompletedChapters, chapterID)
	present := i < len(out.CompletedChapters) && out.CompletedChapters[i] == chapterID

	switch {
	case completed && !present:
		out.CompletedChapters = append(out.CompletedChapters, "")
		copy(out.CompletedChapters[i+1:], out.CompletedChapters[i:])
		out.CompletedChapters[i] = chapterID
	case !completed && present:
		out.CompletedChapters = append(out.CompletedChapters[:i], out.CompletedChapters[i+1:]...)
	}

	out.Progress = Percent(len(out.CompletedChapters), totalChapters)
	return out, nil
}

// RecordQuizAttempt stores the latest attempt for chapterID. Completion state
// is never changed here, so a failed retake leaves an earlier pass intact.
func RecordQuizAttempt(p CourseProgress, chapterID string, result quiz.Result, at time.Time) CourseProgress {
	out := p.Clone()
	out.QuizScores[chapterID] = QuizScore{
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		CompletedAt:    at.UTC(),
	}
	return out
}

// CanComplete reports whether a chapter may be marked complete. Chapters
// without a quiz always can; quiz-gated chapters need a recorded score at or
// above passingScore.
func CanComplete(p CourseProgress, chapterID string, hasQuiz bool, passingScore int) bool {
	if !hasQuiz {
		return true
	}
	score, ok := p.QuizScores[chapterID]
	return ok && score.Percentage >= passingScore
}

// ResetQuiz discards the recorded score for chapterID after its quiz changed.
// When the chapter is still quiz-gated the completion goes too, so the
// learner has to pass the new quiz.
func ResetQuiz(p CourseProgress, chapterID string, gated bool, totalChapters int) (CourseProgress, error) {
	out := p.Clone()
	delete(out.QuizScores, chapterID)
	if !gated {
		return out, nil
	}
	return MarkChapterComplete(out, chapterID, false, totalChapters)
}

// Reconcile drops completions and scores for chapters that are no longer part
// of the course and recomputes Progress against the current chapter list.
func Reconcile(p CourseProgress, chapterIDs []string) CourseProgress {
	valid := make(map[string]bool, len(chapterIDs))
	for _, id := range chapterIDs {
		valid[id] = true
	}

	out := CourseProgress{QuizScores: make(map[string]QuizScore)}
	for _, id := range normalizeSet(append([]string(nil), p.CompletedChapters...)) {
		if valid[id] {
			out.CompletedChapters = append(out.CompletedChapters, id)
		}
	}
	for id, score := range p.QuizScores {
		if valid[id] {
			out.QuizScores[id] = score
		}
	}
	out.Progress = Percent(len(out.CompletedChapters), len(valid))
	return out
}

// normalizeSet sorts and deduplicates ids in place. Snapshots read from the
// store may predate the sorted invariant.
func normalizeSet(ids []string) []string {
	if sort.StringsAreSorted(ids) {
		dup := false
		for i := 1; i < len(ids); i++ {
			if ids[i] == ids[i-1] {
				dup = true
				break
			}
		}
		if !dup {
			return ids
		}
	}
	sort.Strings(ids)
	out := ids[:0]
	for _, id := range ids {
		if len(out) == 0 || id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
