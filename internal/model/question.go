package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// QuestionKind selects the grading rule for a question.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	KindFreeText       QuestionKind = "FREE_TEXT"
	KindNumeric        QuestionKind = "NUMERIC"
)

// Option is one canonical multiple-choice option: a short key ("A", "B", ...)
// paired with the display text. The remote API sends options either as a bare
// text array or as a key→text object; both are normalized into this form so
// grading can accept either the key or the text as an answer.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is one assessable item, supplied immutable by the remote API at
// session start and never mutated afterward.
type Question struct {
	ID            string       `json:"id"`
	Prompt        string       `json:"prompt"`
	Kind          QuestionKind `json:"kind"`
	Options       []Option     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	// XPWeight is the reward granted for answering this question correctly.
	// Defaults to 1 when the remote payload carries no weight.
	XPWeight int `json:"xp_weight"`
}

// QuestionForLearner is a question with the correct answer and explanation
// withheld, safe to ship to the browser while a session is in progress.
type QuestionForLearner struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Kind    QuestionKind `json:"kind"`
	Options []Option `json:"options,omitempty"`
}

// ForLearner strips grading fields from a question.
func (q Question) ForLearner() QuestionForLearner {
	return QuestionForLearner{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Kind:    q.Kind,
		Options: q.Options,
	}
}

// RemoteQuestion mirrors the loose shape the learning API returns. Field
// aliases (question/prompt, answer/correct_answer) both appear in the wild,
// and options may be an array of texts, a key→text object, or a JSON string
// wrapping either.
type RemoteQuestion struct {
	ID            json.Number     `json:"id"`
	Question      string          `json:"question"`
	Prompt        string          `json:"prompt"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Answer        string          `json:"answer"`
	Explanation   string          `json:"explanation"`
	XPReward      int             `json:"xp_reward"`
}

// optionKeys is the key sequence assigned to positional option arrays.
const optionKeys = "ABCDEFGHIJ"

// Canonical converts a remote question payload into the internal form.
// Kind is inferred: options present → multiple choice; integer correct
// answer → numeric; anything else → free text.
func (rq RemoteQuestion) Canonical() Question {
	q := Question{
		ID:          rq.ID.String(),
		Prompt:      rq.Prompt,
		Explanation: rq.Explanation,
		XPWeight:    rq.XPReward,
	}
	if q.Prompt == "" {
		q.Prompt = rq.Question
	}
	q.CorrectAnswer = rq.CorrectAnswer
	if q.CorrectAnswer == "" {
		q.CorrectAnswer = rq.Answer
	}
	if q.XPWeight <= 0 {
		q.XPWeight = 1
	}

	q.Options = parseOptions(rq.Options)
	switch {
	case len(q.Options) > 0:
		q.Kind = KindMultipleChoice
	case isInteger(q.CorrectAnswer):
		q.Kind = KindNumeric
	default:
		q.Kind = KindFreeText
	}
	return q
}

// CanonicalQuestions converts a remote payload slice, dropping entries that
// have no prompt at all.
func CanonicalQuestions(raw []RemoteQuestion) []Question {
	out := make([]Question, 0, len(raw))
	for _, rq := range raw {
		q := rq.Canonical()
		if q.Prompt == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

func parseOptions(raw json.RawMessage) []Option {
	if len(raw) == 0 {
		return nil
	}

	// Some rows store options as a JSON string wrapping the real payload.
	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil {
		if nested == "" {
			return nil
		}
		return parseOptions(json.RawMessage(nested))
	}

	var texts []string
	if err := json.Unmarshal(raw, &texts); err == nil {
		opts := make([]Option, 0, len(texts))
		for i, t := range texts {
			if i >= len(optionKeys) {
				break
			}
			opts = append(opts, Option{Key: string(optionKeys[i]), Text: t})
		}
		return opts
	}

	var keyed map[string]string
	if err := json.Unmarshal(raw, &keyed); err == nil {
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		opts := make([]Option, 0, len(keys))
		for _, k := range keys {
			opts = append(opts, Option{Key: k, Text: keyed[k]})
		}
		return opts
	}

	return nil
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}
