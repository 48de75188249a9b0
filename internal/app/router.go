package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// Screen is one of the four mutually exclusive views.
type Screen string

const (
	ScreenLibrary Screen = "library"
	ScreenEdit    Screen = "edit"
	ScreenTake    Screen = "take"
	ScreenResults Screen = "results"
)

// Confirmer answers destructive-action confirmations on behalf of the user.
// Declining is a no-op for the caller, never an error.
type Confirmer interface {
	Confirm(prompt string) bool
}

// RouterOption customizes a router.
type RouterOption func(*Router)

// WithDefaultTimePerQuestion sets the countdown assigned to new quizzes.
func WithDefaultTimePerQuestion(seconds int) RouterOption {
	return func(r *Router) { r.defaultTime = domain.ClampTimePerQuestion(seconds) }
}

// WithEngineOptions forwards options to every engine the router creates.
func WithEngineOptions(opts ...EngineOption) RouterOption {
	return func(r *Router) { r.engineOpts = opts }
}

// Router owns which screen is active and carries the active quiz between the
// library, the editor, the session engine and the results view. The engine
// emits exactly one result per finished session; the router records it and
// switches to the results screen.
type Router struct {
	store       QuizStore
	results     ResultStore
	confirm     Confirmer
	log         *zap.Logger
	defaultTime int
	engineOpts  []EngineOption

	mu          sync.Mutex
	screen      Screen
	activeQuiz  string
	editorIsNew bool
	editor      *Editor
	engine      *Engine
	lastResult  *domain.SessionResult
	notice      string
	sessionDone chan struct{}
}

// NewRouter starts on the library screen.
func NewRouter(store QuizStore, results ResultStore, confirm Confirmer, log *zap.Logger, opts ...RouterOption) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		store:       store,
		results:     results,
		confirm:     confirm,
		log:         log,
		defaultTime: domain.DefaultTimePerQuestion,
		screen:      ScreenLibrary,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Screen reports the active screen.
func (r *Router) Screen() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// Notice is the current display-only message, if any.
func (r *Router) Notice() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notice
}

// ActiveQuizID is the quiz the edit or take screen is working on.
func (r *Router) ActiveQuizID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeQuiz
}

// Editor returns the open editing session, or nil outside the edit screen.
func (r *Router) Editor() *Editor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editor
}

// Engine returns the live session engine, or nil outside the take screen.
func (r *Router) Engine() *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine
}

// LastResult returns the most recent session result, replaced wholesale when
// a new session finishes.
func (r *Router) LastResult() (domain.SessionResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastResult == nil {
		return domain.SessionResult{}, false
	}
	return *r.lastResult, true
}

// SessionDone is closed when the current session ends, by completion or
// cancellation. Outside a session it returns an already closed channel.
func (r *Router) SessionDone() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionDone == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return r.sessionDone
}

// Library switches to the library screen and lists the collection.
func (r *Router) Library(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.screen = ScreenLibrary
	r.activeQuiz = ""
	r.editor = nil
	r.mu.Unlock()
	return quizzes, nil
}

// NewQuiz opens the editor over a fresh document with default field values.
// The document reaches the store only on SaveEditor.
func (r *Router) NewQuiz() *Editor {
	quiz := domain.NewQuiz(time.Now())
	quiz.TimePerQuestion = r.defaultTime
	editor := NewEditor(quiz)

	r.mu.Lock()
	r.screen = ScreenEdit
	r.activeQuiz = quiz.ID
	r.editor = editor
	r.editorIsNew = true
	r.notice = ""
	r.mu.Unlock()
	return editor
}

// OpenEditor opens the editor over an existing quiz.
func (r *Router) OpenEditor(ctx context.Context, id string) (*Editor, error) {
	quiz, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	editor := NewEditor(quiz)

	r.mu.Lock()
	r.screen = ScreenEdit
	r.activeQuiz = quiz.ID
	r.editor = editor
	r.editorIsNew = false
	r.notice = ""
	r.mu.Unlock()
	return editor, nil
}

// SaveEditor validates and persists the working copy, then returns to the
// library. On a validation error the edit screen stays open for a retry.
func (r *Router) SaveEditor(ctx context.Context) error {
	r.mu.Lock()
	editor := r.editor
	isNew := r.editorIsNew
	r.mu.Unlock()
	if editor == nil {
		return nil
	}

	quiz, err := editor.Save()
	if err != nil {
		return err
	}
	if isNew {
		err = r.store.Create(ctx, quiz)
	} else {
		err = r.store.Update(ctx, quiz)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.screen = ScreenLibrary
	r.activeQuiz = ""
	r.editor = nil
	r.mu.Unlock()
	return nil
}

// CloseEditor abandons the working copy and returns to the library.
func (r *Router) CloseEditor() {
	r.mu.Lock()
	r.screen = ScreenLibrary
	r.activeQuiz = ""
	r.editor = nil
	r.mu.Unlock()
}

// StartSession instantiates the engine for a quiz and switches to the take
// screen. A missing quiz or an empty question list routes back to the library
// with a display-only notice; neither produces a session result.
func (r *Router) StartSession(ctx context.Context, id string) error {
	quiz, err := r.store.Get(ctx, id)
	if err != nil {
		r.mu.Lock()
		r.screen = ScreenLibrary
		r.notice = "That quiz is no longer in the library."
		r.mu.Unlock()
		return err
	}

	engine, err := NewEngine(quiz, r.log.Named("engine"), r.engineOpts...)
	if err != nil {
		r.mu.Lock()
		r.screen = ScreenLibrary
		r.notice = "This quiz has no questions yet. Add some in the editor first."
		r.mu.Unlock()
		return err
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.screen = ScreenTake
	r.activeQuiz = quiz.ID
	r.engine = engine
	r.notice = ""
	r.sessionDone = done
	r.mu.Unlock()

	engine.Start()
	snaps, cancelSub := engine.Subscribe()
	go r.watchSession(engine, snaps, cancelSub, done)
	return nil
}

// watchSession consumes engine snapshots until the session ends, then routes
// to the results screen when a result was produced. Cancellation routing is
// handled by whoever canceled; the watcher only closes the done signal.
func (r *Router) watchSession(engine *Engine, snaps <-chan Snapshot, cancelSub func(), done chan struct{}) {
	defer cancelSub()
	defer close(done)
	for snap := range snaps {
		if snap.Status == StatusCompleted && snap.Result != nil {
			r.completeSession(engine, *snap.Result)
			return
		}
		if snap.Status == StatusCanceled {
			return
		}
	}
}

// QuitSession asks for confirmation and, when granted, discards the session
// without a result and returns to the library.
func (r *Router) QuitSession() bool {
	r.mu.Lock()
	engine := r.engine
	r.mu.Unlock()
	if engine == nil {
		return false
	}
	if r.confirm != nil && !r.confirm.Confirm("Quit this quiz? Progress will be lost.") {
		return false
	}

	engine.Cancel()
	r.mu.Lock()
	if r.engine == engine {
		r.engine = nil
		r.screen = ScreenLibrary
		r.activeQuiz = ""
	}
	r.mu.Unlock()
	return true
}

// FinishSession force-completes the running session and blocks until the
// result has been routed to the results screen.
func (r *Router) FinishSession() (domain.SessionResult, error) {
	r.mu.Lock()
	engine := r.engine
	done := r.sessionDone
	r.mu.Unlock()
	if engine == nil {
		return domain.SessionResult{}, domain.ErrSessionFinished
	}

	result, err := engine.FinishNow()
	if err != nil {
		return domain.SessionResult{}, err
	}
	if done != nil {
		<-done
	}
	return result, nil
}

// DeleteQuiz removes a quiz after confirmation. Deleting the quiz currently
// being played or edited discards that session or editor as well.
func (r *Router) DeleteQuiz(ctx context.Context, id string) (bool, error) {
	if r.confirm != nil && !r.confirm.Confirm("Delete this quiz? This cannot be undone.") {
		return false, nil
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return false, err
	}

	r.mu.Lock()
	engine := r.engine
	cascade := r.activeQuiz == id
	if cascade {
		r.activeQuiz = ""
		r.editor = nil
		r.engine = nil
		r.screen = ScreenLibrary
		r.notice = ""
	}
	r.mu.Unlock()

	if cascade && engine != nil {
		engine.Cancel()
	}
	r.log.Info("quiz deleted", zap.String("quizId", id), zap.Bool("sessionDiscarded", cascade && engine != nil))
	return true, nil
}

// History lists recently recorded session results, newest first.
func (r *Router) History(ctx context.Context, limit int) ([]domain.SessionResult, error) {
	if r.results == nil {
		return nil, nil
	}
	return r.results.RecentResults(ctx, limit)
}

func (r *Router) completeSession(engine *Engine, result domain.SessionResult) {
	if r.results != nil {
		if err := r.results.SaveResult(context.Background(), result); err != nil {
			r.log.Warn("failed to record session result", zap.Error(err))
		}
	}
	r.mu.Lock()
	if r.engine == engine {
		r.engine = nil
		r.lastResult = &result
		r.screen = ScreenResults
	}
	r.mu.Unlock()
}
