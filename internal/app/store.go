package app

import (
	"context"

	"quizdesk/internal/domain"
)

// QuizStore is the document store the router and editor work against. List
// order is creation order; all returned documents are independent copies.
type QuizStore interface {
	List(ctx context.Context) ([]domain.Quiz, error)
	Get(ctx context.Context, id string) (domain.Quiz, error)
	Create(ctx context.Context, quiz domain.Quiz) error
	Update(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id string) error
}

// ResultStore records finished session results and serves the history view.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.SessionResult) error
	RecentResults(ctx context.Context, limit int) ([]domain.SessionResult, error)
}
