package app

import (
	"strings"
	"time"

	"quizdesk/internal/domain"
)

// Editor owns a private working copy of one quiz document for the duration of
// an editing session. The stored document stays untouched until Save hands
// the finished copy back; abandoning the editor discards every change.
type Editor struct {
	doc domain.Quiz
	now func() time.Time
}

// NewEditor opens an editing session over a deep copy of the quiz.
func NewEditor(quiz domain.Quiz) *Editor {
	return &Editor{doc: quiz.Clone(), now: time.Now}
}

// Quiz returns a copy of the working document.
func (e *Editor) Quiz() domain.Quiz {
	return e.doc.Clone()
}

func (e *Editor) SetTitle(title string) {
	e.doc.Title = title
}

func (e *Editor) SetDescription(description string) {
	e.doc.Description = description
}

// SetTimePerQuestion clamps to the 5 second floor instead of erroring.
func (e *Editor) SetTimePerQuestion(seconds int) {
	e.doc.TimePerQuestion = domain.ClampTimePerQuestion(seconds)
}

// AddQuestion appends an empty question and returns a copy of it.
func (e *Editor) AddQuestion(text string) domain.Question {
	question := domain.NewQuestion()
	question.Text = text
	e.doc.Questions = append(e.doc.Questions, question)
	return question.Clone()
}

func (e *Editor) RemoveQuestion(index int) error {
	if index < 0 || index >= len(e.doc.Questions) {
		return domain.ErrQuestionNotFound
	}
	e.doc.Questions = append(e.doc.Questions[:index], e.doc.Questions[index+1:]...)
	return nil
}

func (e *Editor) SetQuestionText(index int, text string) error {
	if index < 0 || index >= len(e.doc.Questions) {
		return domain.ErrQuestionNotFound
	}
	e.doc.Questions[index].Text = text
	return nil
}

func (e *Editor) AddChoice(question int, text string) error {
	if question < 0 || question >= len(e.doc.Questions) {
		return domain.ErrQuestionNotFound
	}
	q := &e.doc.Questions[question]
	q.Choices = append(q.Choices, text)
	return nil
}

func (e *Editor) SetChoice(question, choice int, text string) error {
	if question < 0 || question >= len(e.doc.Questions) {
		return domain.ErrQuestionNotFound
	}
	q := &e.doc.Questions[question]
	if choice < 0 || choice >= len(q.Choices) {
		return domain.ErrInvalidChoice
	}
	q.Choices[choice] = text
	return nil
}

// RemoveChoice deletes a choice and keeps the answer invariant intact: when
// the removed choice was the answer, the answer resets to 0; answers above
// the removed index shift down with their choice.
func (e *Editor) RemoveChoice(question, choice int) error {
	if question < 0 || question >= len(e.doc.Questions) {
		return domain.ErrQuestionNotFound
	}
	q := &e.doc.Questions[question]
	if choice < 0 || choice >= len(q.Choices) {
		return domain.ErrInvalidChoice
	}
	q.Choices = append(q.Choices[:choice], q.Choices[choice+1:]...)
	switch {
	case q.AnswerIndex == choice:
		q.AnswerIndex = 0
	case q.AnswerIndex > choice:
		q.AnswerIndex--
	}
	return nil
}

func (e *Editor) SetAnswerIndex(question, choice int) error {
	if question < 0 || question >= len(e.doc.Questions) {
		return domain.ErrQuestionNotFound
	}
	q := &e.doc.Questions[question]
	if choice < 0 || choice >= len(q.Choices) {
		return domain.ErrInvalidChoice
	}
	q.AnswerIndex = choice
	return nil
}

// Save validates the working copy and returns the finished document for the
// store. The editor keeps its copy, so a failed save can be fixed and retried.
func (e *Editor) Save() (domain.Quiz, error) {
	if strings.TrimSpace(e.doc.Title) == "" {
		return domain.Quiz{}, domain.ErrUntitledQuiz
	}
	e.doc.TimePerQuestion = domain.ClampTimePerQuestion(e.doc.TimePerQuestion)
	e.doc.UpdatedAt = e.now()
	return e.doc.Clone(), nil
}
