package term

import (
	"fmt"
	"io"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

func renderLibrary(w io.Writer, quizzes []domain.Quiz, notice string) {
	fmt.Fprintln(w, "── Library ──")
	if notice != "" {
		fmt.Fprintf(w, "! %s\n", notice)
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(w, "No quizzes yet. Type 'new' to create one.")
	}
	for i, quiz := range quizzes {
		fmt.Fprintf(w, "%2d. %s (%d questions, %ds each)\n",
			i+1, quiz.Title, len(quiz.Questions), quiz.TimePerQuestion)
		if quiz.Description != "" {
			fmt.Fprintf(w, "    %s\n", quiz.Description)
		}
	}
	fmt.Fprint(w, "> ")
}

func renderQuiz(w io.Writer, quiz domain.Quiz) {
	fmt.Fprintln(w, "── Edit ──")
	title := quiz.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "Title: %s\n", title)
	if quiz.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", quiz.Description)
	}
	fmt.Fprintf(w, "Time per question: %ds\n", quiz.TimePerQuestion)
	for i, question := range quiz.Questions {
		fmt.Fprintf(w, "%2d. %s\n", i+1, question.Text)
		for j, choice := range question.Choices {
			marker := " "
			if j == question.AnswerIndex {
				marker = "*"
			}
			fmt.Fprintf(w, "   %s %d) %s\n", marker, j+1, choice)
		}
	}
	fmt.Fprint(w, "edit> ")
}

func renderQuestion(w io.Writer, snap app.Snapshot) {
	fmt.Fprintf(w, "\nQuestion %d (%ds on the clock)\n", snap.Index+1, snap.Remaining)
	fmt.Fprintln(w, snap.Question.Text)
	for i, choice := range snap.Question.Choices {
		fmt.Fprintf(w, "  %d) %s\n", i+1, choice)
	}
	fmt.Fprint(w, "answer> ")
}

func renderResult(w io.Writer, result domain.SessionResult) {
	fmt.Fprintf(w, "── Results: %s ──\n", result.QuizTitle)
	fmt.Fprintf(w, "Score: %d/%d\n", result.Correct, result.Total)
	for i, outcome := range result.Outcomes {
		mark := "✗"
		if outcome.Correct {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %2d. %s\n", mark, i+1, outcome.Text)
		if outcome.ChosenIndex == domain.Unanswered {
			fmt.Fprintln(w, "     your answer: (unanswered)")
		} else if outcome.ChosenIndex < len(outcome.Choices) {
			fmt.Fprintf(w, "     your answer: %s\n", outcome.Choices[outcome.ChosenIndex])
		}
		if !outcome.Correct && outcome.AnswerIndex < len(outcome.Choices) {
			fmt.Fprintf(w, "     correct:     %s\n", outcome.Choices[outcome.AnswerIndex])
		}
	}
}

func renderHistory(w io.Writer, results []domain.SessionResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No finished sessions yet.")
		return
	}
	fmt.Fprintln(w, "── History ──")
	for _, result := range results {
		fmt.Fprintf(w, "%s  %s  %d/%d\n",
			result.CompletedAt.Format("2006-01-02 15:04"),
			result.QuizTitle, result.Correct, result.Total)
	}
}
