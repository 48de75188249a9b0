package app

import (
	"time"

	"quizdesk/internal/domain"
)

// ComputeResult scores a finished session. It is a pure function of the quiz
// document and the answer map: a question is correct iff an answer was
// recorded and equals the question's answer index. Absent answers are
// incorrect, never treated as choice 0. No partial credit, no time bonus.
func ComputeResult(quiz domain.Quiz, answers domain.AnswerMap, completedAt time.Time) domain.SessionResult {
	outcomes := make([]domain.QuestionOutcome, 0, len(quiz.Questions))
	correct := 0
	for _, question := range quiz.Questions {
		chosen, answered := answers[question.ID]
		if !answered {
			chosen = domain.Unanswered
		}
		ok := answered && chosen == question.AnswerIndex
		if ok {
			correct++
		}
		outcomes = append(outcomes, domain.QuestionOutcome{
			QuestionID:  question.ID,
			Text:        question.Text,
			Choices:     append([]string(nil), question.Choices...),
			ChosenIndex: chosen,
			AnswerIndex: question.AnswerIndex,
			Correct:     ok,
		})
	}
	return domain.SessionResult{
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		Total:       len(quiz.Questions),
		Correct:     correct,
		Outcomes:    outcomes,
		CompletedAt: completedAt,
	}
}
