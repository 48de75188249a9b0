package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quizdesk/internal/domain"
)

// Persister mirrors the quiz collection to durable storage and records
// finished session results.
type Persister interface {
	LoadCollection(ctx context.Context) ([]domain.Quiz, error)
	SaveCollection(ctx context.Context, quizzes []domain.Quiz) error
	AppendResult(ctx context.Context, result domain.SessionResult) error
	RecentResults(ctx context.Context, limit int) ([]domain.SessionResult, error)
}

// Store holds the authoritative quiz collection in memory. The collection is
// loaded lazily from the persister once (deduplicated with singleflight) and
// written back wholesale after every mutation. A load failure of any kind
// falls back to the built-in sample collection; storage is never fatal.
type Store struct {
	persister Persister
	log       *zap.Logger
	sf        singleflight.Group

	mu      sync.RWMutex
	loaded  bool
	quizzes []domain.Quiz
}

func NewStore(persister Persister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{persister: persister, log: log}
}

// List returns the collection in creation order.
func (s *Store) List(ctx context.Context) ([]domain.Quiz, error) {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		out = append(out, quiz.Clone())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Quiz, error) {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.ID == id {
			return quiz.Clone(), nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *Store) Create(ctx context.Context, quiz domain.Quiz) error {
	s.ensureLoaded(ctx)
	s.mu.Lock()
	s.quizzes = append(s.quizzes, quiz.Clone())
	s.mu.Unlock()
	s.writeBack(ctx)
	return nil
}

func (s *Store) Update(ctx context.Context, quiz domain.Quiz) error {
	s.ensureLoaded(ctx)
	s.mu.Lock()
	found := false
	for i := range s.quizzes {
		if s.quizzes[i].ID == quiz.ID {
			s.quizzes[i] = quiz.Clone()
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return domain.ErrQuizNotFound
	}
	s.writeBack(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.ensureLoaded(ctx)
	s.mu.Lock()
	found := false
	for i := range s.quizzes {
		if s.quizzes[i].ID == id {
			s.quizzes = append(s.quizzes[:i], s.quizzes[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return domain.ErrQuizNotFound
	}
	s.writeBack(ctx)
	return nil
}

// SaveResult appends the result to the persisted history.
func (s *Store) SaveResult(ctx context.Context, result domain.SessionResult) error {
	return s.persister.AppendResult(ctx, result)
}

// RecentResults lists recorded results, newest first.
func (s *Store) RecentResults(ctx context.Context, limit int) ([]domain.SessionResult, error) {
	return s.persister.RecentResults(ctx, limit)
}

func (s *Store) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	_, _, _ = s.sf.Do("load", func() (interface{}, error) {
		s.mu.RLock()
		if s.loaded {
			s.mu.RUnlock()
			return nil, nil
		}
		s.mu.RUnlock()

		quizzes, err := s.persister.LoadCollection(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNoCollection) {
				s.log.Info("no stored quiz collection, starting from samples")
			} else {
				s.log.Warn("failed to load stored quiz collection, starting from samples", zap.Error(err))
			}
			quizzes = domain.SampleQuizzes()
		}

		s.mu.Lock()
		s.quizzes = quizzes
		s.loaded = true
		s.mu.Unlock()
		return nil, nil
	})
}

// writeBack persists a snapshot of the whole collection. Failures are logged
// and swallowed: the in-memory state stays authoritative for this run.
func (s *Store) writeBack(ctx context.Context) {
	s.mu.RLock()
	snapshot := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		snapshot = append(snapshot, quiz.Clone())
	}
	s.mu.RUnlock()

	if err := s.persister.SaveCollection(ctx, snapshot); err != nil {
		s.log.Warn("failed to persist quiz collection", zap.Error(err))
	}
}
