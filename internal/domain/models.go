package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MinTimePerQuestion is the smallest countdown a question may run under.
	MinTimePerQuestion = 5
	// DefaultTimePerQuestion is assigned to freshly created quizzes.
	DefaultTimePerQuestion = 30
)

// Unanswered marks a question the player never answered. It is distinct from
// choice index 0 on purpose: an absent answer is incorrect, not "first choice".
const Unanswered = -1

// Question models an MCQ question with exactly one correct choice.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"` // invariant: 0 <= AnswerIndex < len(Choices) when Choices is non-empty
}

// Quiz is an ordered collection of questions with a shared per-question time limit.
type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	TimePerQuestion int        `json:"timePerQuestion"` // seconds
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AnswerMap records the chosen choice index per question ID. A question absent
// from the map is unanswered.
type AnswerMap map[string]int

// QuestionOutcome is the per-question line of a session result.
type QuestionOutcome struct {
	QuestionID  string   `json:"questionId"`
	Text        string   `json:"text"`
	Choices     []string `json:"choices"`
	ChosenIndex int      `json:"chosenIndex"` // Unanswered when no answer was recorded
	AnswerIndex int      `json:"answerIndex"`
	Correct     bool     `json:"correct"`
}

// SessionResult is the immutable scored outcome of a completed or
// force-finished session.
type SessionResult struct {
	QuizID      string            `json:"quizId"`
	QuizTitle   string            `json:"quizTitle"`
	Total       int               `json:"total"`
	Correct     int               `json:"correct"`
	Outcomes    []QuestionOutcome `json:"outcomes"`
	CompletedAt time.Time         `json:"completedAt"`
}

// NewQuiz builds an empty quiz with a generated ID and default field values.
func NewQuiz(now time.Time) Quiz {
	return Quiz{
		ID:              uuid.NewString(),
		TimePerQuestion: DefaultTimePerQuestion,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewQuestion builds an empty question with a generated ID.
func NewQuestion() Question {
	return Question{ID: uuid.NewString()}
}

// Clone returns a deep copy, so holders of the original never observe edits.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question.Clone()
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Choices = append([]string(nil), q.Choices...)
	return out
}

// Clone returns an independent copy of the answer map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for id, idx := range m {
		out[id] = idx
	}
	return out
}

// ClampTimePerQuestion enforces the configured floor, substituting the
// default for non-positive values.
func ClampTimePerQuestion(seconds int) int {
	if seconds <= 0 {
		return DefaultTimePerQuestion
	}
	if seconds < MinTimePerQuestion {
		return MinTimePerQuestion
	}
	return seconds
}
