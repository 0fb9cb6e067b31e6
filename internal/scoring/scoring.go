// Package scoring implements answer grading. All functions are pure; session
// state handling lives in the session package.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vedalearn/session-backend/internal/model"
)

// MalformedQuestionError flags a choice question whose stored correct answer
// matches none of its options. The answer is graded incorrect rather than
// crashing the session, and the caller surfaces the warning.
type MalformedQuestionError struct {
	QuestionID    string
	CorrectAnswer string
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("question %s: correct answer %q matches no option", e.QuestionID, e.CorrectAnswer)
}

// GradeAnswer reports whether rawAnswer is correct for the question.
//
// Rules, by question kind:
//   - Multiple choice: the answer matches when it equals the correct option's
//     key (case-sensitive) or its text (trimmed, case-insensitive). The stored
//     correct answer itself may be a key or an option text.
//   - Numeric: both sides are parsed as integers and compared numerically;
//     if either fails to parse, falls back to the free-text rule.
//   - Free text: both sides trimmed and lowercased, then compared.
//
// The returned error is always a *MalformedQuestionError and never
// accompanies a true result.
func GradeAnswer(q model.Question, rawAnswer string) (bool, error) {
	switch q.Kind {
	case model.KindMultipleChoice:
		return gradeChoice(q, rawAnswer)
	case model.KindNumeric:
		return gradeNumeric(q, rawAnswer), nil
	default:
		return normalize(rawAnswer) == normalize(q.CorrectAnswer), nil
	}
}

func gradeChoice(q model.Question, rawAnswer string) (bool, error) {
	correct := findOption(q.Options, q.CorrectAnswer)
	if correct == nil {
		return false, &MalformedQuestionError{QuestionID: q.ID, CorrectAnswer: q.CorrectAnswer}
	}
	if rawAnswer == correct.Key {
		return true, nil
	}
	return normalize(rawAnswer) == normalize(correct.Text), nil
}

// findOption resolves an answer key or option text to its option.
func findOption(opts []model.Option, answer string) *model.Option {
	for i := range opts {
		if opts[i].Key == answer {
			return &opts[i]
		}
	}
	want := normalize(answer)
	for i := range opts {
		if normalize(opts[i].Text) == want {
			return &opts[i]
		}
	}
	return nil
}

func gradeNumeric(q model.Question, rawAnswer string) bool {
	got, errGot := strconv.Atoi(strings.TrimSpace(rawAnswer))
	want, errWant := strconv.Atoi(strings.TrimSpace(q.CorrectAnswer))
	if errGot == nil && errWant == nil {
		return got == want
	}
	return normalize(rawAnswer) == normalize(q.CorrectAnswer)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GradeSession aggregates a finished answer set into a Result. Questions
// without a record count as unanswered and incorrect. A zero-question
// session scores 0% (never a division error).
func GradeSession(questions []model.Question, answers map[string]model.AnswerRecord, passingScorePercent, timeTakenSeconds int) *model.Result {
	res := &model.Result{
		TotalQuestions:   len(questions),
		TimeTakenSeconds: timeTakenSeconds,
		PerQuestion:      make([]model.QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		rec, ok := answers[q.ID]
		qr := model.QuestionResult{
			Question: q,
			Answered: ok,
		}
		if ok {
			qr.UserAnswer = rec.RawAnswer
			qr.IsCorrect = rec.IsCorrect
		}
		if qr.IsCorrect {
			res.CorrectCount++
			res.XPEarned += q.XPWeight
		}
		res.PerQuestion = append(res.PerQuestion, qr)
	}

	if res.TotalQuestions > 0 {
		res.ScorePercent = int(math.Round(100 * float64(res.CorrectCount) / float64(res.TotalQuestions)))
	}
	res.IsPassed = res.ScorePercent >= passingScorePercent
	return res
}
