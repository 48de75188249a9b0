package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

type recordingPersister struct {
	mu         sync.Mutex
	collection []domain.Quiz
	loadErr    error
	saveErr    error
	loads      int
	saves      int
	results    []domain.SessionResult
}

func (p *recordingPersister) LoadCollection(context.Context) ([]domain.Quiz, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	out := make([]domain.Quiz, len(p.collection))
	copy(out, p.collection)
	return out, nil
}

func (p *recordingPersister) SaveCollection(_ context.Context, quizzes []domain.Quiz) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.collection = quizzes
	return nil
}

func (p *recordingPersister) AppendResult(_ context.Context, result domain.SessionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return nil
}

func (p *recordingPersister) RecentResults(context.Context, int) ([]domain.SessionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.SessionResult, len(p.results))
	copy(out, p.results)
	return out, nil
}

func storedQuiz(id, title string) domain.Quiz {
	return domain.Quiz{
		ID:              id,
		Title:           title,
		TimePerQuestion: 10,
		Questions: []domain.Question{
			{ID: id + "-q1", Text: "?", Choices: []string{"a", "b"}, AnswerIndex: 0},
		},
	}
}

func TestListLoadsOnceAndClones(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{collection: []domain.Quiz{storedQuiz("q1", "First")}}
	store := memory.NewStore(persister, nil)

	first, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 1 || first[0].Title != "First" {
		t.Fatalf("unexpected collection: %+v", first)
	}

	// Mutating the returned copy must not reach the store.
	first[0].Title = "hijacked"
	again, _ := store.List(ctx)
	if again[0].Title != "First" {
		t.Fatalf("store state was aliased to a caller copy")
	}

	if persister.loads != 1 {
		t.Fatalf("expected a single load, got %d", persister.loads)
	}
}

func TestLoadFailureFallsBackToSamples(t *testing.T) {
	ctx := context.Background()
	for _, loadErr := range []error{domain.ErrNoCollection, errors.New("disk on fire")} {
		persister := &recordingPersister{loadErr: loadErr}
		store := memory.NewStore(persister, nil)

		quizzes, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list after %v: %v", loadErr, err)
		}
		if len(quizzes) != len(domain.SampleQuizzes()) {
			t.Fatalf("expected sample fallback after %v, got %d quizzes", loadErr, len(quizzes))
		}
	}
}

func TestCreateUpdateDeleteWriteBack(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{collection: []domain.Quiz{}}
	store := memory.NewStore(persister, nil)

	quiz := storedQuiz("new", "New Quiz")
	if err := store.Create(ctx, quiz); err != nil {
		t.Fatalf("create: %v", err)
	}
	if persister.saves != 1 {
		t.Fatalf("expected write-back after create, got %d saves", persister.saves)
	}

	quiz.Title = "Renamed"
	if err := store.Update(ctx, quiz); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.Get(ctx, "new")
	if err != nil || got.Title != "Renamed" {
		t.Fatalf("get after update: %+v err=%v", got, err)
	}

	if err := store.Delete(ctx, "new"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "new"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound after delete, got %v", err)
	}
	if persister.saves != 3 {
		t.Fatalf("expected three write-backs, got %d", persister.saves)
	}
	if len(persister.collection) != 0 {
		t.Fatalf("persisted snapshot should be empty, got %d", len(persister.collection))
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{collection: []domain.Quiz{}}
	store := memory.NewStore(persister, nil)

	if err := store.Update(ctx, storedQuiz("ghost", "Ghost")); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound on update, got %v", err)
	}
	if err := store.Delete(ctx, "ghost"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound on delete, got %v", err)
	}
	if persister.saves != 0 {
		t.Fatalf("failed mutations must not write back, got %d saves", persister.saves)
	}
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{collection: []domain.Quiz{}, saveErr: errors.New("read-only volume")}
	store := memory.NewStore(persister, nil)

	if err := store.Create(ctx, storedQuiz("q1", "Kept")); err != nil {
		t.Fatalf("create must survive a persist failure: %v", err)
	}
	got, err := store.Get(ctx, "q1")
	if err != nil || got.Title != "Kept" {
		t.Fatalf("in-memory state should stay authoritative: %+v err=%v", got, err)
	}
}
