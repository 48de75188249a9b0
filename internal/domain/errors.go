package domain

import "errors"

var (
	// ErrQuizNotFound indicates the requested quiz is not in the collection.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions is returned when a session is started on a quiz with no questions.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrQuestionNotFound indicates a question index outside the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSessionFinished is returned for operations on a session that already ended.
	ErrSessionFinished = errors.New("session already finished")
	// ErrInvalidChoice indicates a choice index outside the current question's range.
	ErrInvalidChoice = errors.New("choice index out of range")
	// ErrUntitledQuiz is returned when saving a quiz without a title.
	ErrUntitledQuiz = errors.New("quiz title must not be empty")
	// ErrNoCollection indicates persistent storage holds no quiz collection yet.
	ErrNoCollection = errors.New("no stored quiz collection")
)
