package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// Status identifies the lifecycle phase of a session engine.
type Status string

const (
	// StatusActive means a question is displayed, answers are accepted and a
	// countdown is running.
	StatusActive Status = "active"
	// StatusCompleted is terminal; the result has been computed and emitted.
	StatusCompleted Status = "completed"
	// StatusCanceled is terminal; the session was discarded without a result.
	StatusCanceled Status = "canceled"
)

// TickSource produces a stream of countdown ticks and a stop function for it.
// The default wraps time.Ticker; tests substitute a hand-driven channel.
type TickSource func(period time.Duration) (<-chan time.Time, func())

func defaultTickSource(period time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(period)
	return t.C, t.Stop
}

// Snapshot is the observable state of the engine at one moment. Result is
// non-nil only on the final snapshot of a completed session.
type Snapshot struct {
	Status    Status
	Index     int
	Remaining int
	Question  domain.Question
	Result    *domain.SessionResult
}

// EngineOption customizes an engine, mainly for deterministic tests.
type EngineOption func(*Engine)

// WithClock fixes the completion timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithTickSource replaces the countdown tick source.
func WithTickSource(src TickSource) EngineOption {
	return func(e *Engine) { e.ticks = src }
}

// Engine drives one quiz session: question-by-question playback, countdown,
// answer capture and final scoring. It never mutates the quiz it is given.
//
// Exactly one countdown binding is live at any time. Every transition that
// changes the current question cancels the old binding before creating a new
// one, and a canceled binding can never mutate engine state: each binding
// carries a generation number that is checked under the engine mutex before a
// tick is applied.
type Engine struct {
	quiz  domain.Quiz
	log   *zap.Logger
	now   func() time.Time
	ticks TickSource

	mu          sync.Mutex
	status      Status
	index       int
	remaining   int
	answers     domain.AnswerMap
	result      *domain.SessionResult
	gen         int
	cancelTick  func()
	subscribers map[chan Snapshot]struct{}
}

// NewEngine builds an engine for one quiz. Quizzes without questions cannot
// be played and are rejected up front; they never produce a result.
func NewEngine(quiz domain.Quiz, log *zap.Logger, opts ...EngineOption) (*Engine, error) {
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		quiz:        quiz.Clone(),
		log:         log,
		now:         time.Now,
		ticks:       defaultTickSource,
		answers:     make(domain.AnswerMap),
		subscribers: make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Start resets the session to the first question with an empty answer map and
// a full countdown, and begins ticking.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = StatusActive
	e.index = 0
	e.answers = make(domain.AnswerMap)
	e.result = nil
	e.remaining = e.timePerQuestion()
	e.bindCountdownLocked()
	e.log.Info("session started",
		zap.String("quizId", e.quiz.ID),
		zap.Int("questions", len(e.quiz.Questions)),
		zap.Int("timePerQuestion", e.remaining))
	e.broadcastLocked()
}

// SelectChoice records the answer for the current question, overwriting any
// earlier pick. It does not advance the question or touch the countdown.
func (e *Engine) SelectChoice(choice int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return domain.ErrSessionFinished
	}
	question := e.quiz.Questions[e.index]
	if choice < 0 || choice >= len(question.Choices) {
		return domain.ErrInvalidChoice
	}
	e.answers[question.ID] = choice
	e.broadcastLocked()
	return nil
}

// Advance moves to the next question with a fresh countdown, or completes the
// session when the current question is the last. isTimeout only distinguishes
// manual from automatic triggers in the logs; scoring is identical.
func (e *Engine) Advance(isTimeout bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advanceLocked(isTimeout)
}

// Retreat steps back one question when possible. Going back grants full time
// again: every index change rebinds the countdown, in either direction.
func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive || e.index == 0 {
		return
	}
	e.index--
	e.remaining = e.timePerQuestion()
	e.bindCountdownLocked()
	e.broadcastLocked()
}

// FinishNow force-completes the session from any question. Unanswered
// questions score as incorrect.
func (e *Engine) FinishNow() (domain.SessionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return domain.SessionResult{}, domain.ErrSessionFinished
	}
	e.completeLocked(false)
	return *e.result, nil
}

// Cancel discards the session without producing a result. Confirmation is the
// caller's concern.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return
	}
	e.cancelCountdownLocked()
	e.status = StatusCanceled
	e.log.Info("session canceled", zap.String("quizId", e.quiz.ID))
	e.broadcastLocked()
	e.closeSubscribersLocked()
}

// Result returns the session result once the session has completed.
func (e *Engine) Result() (domain.SessionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return domain.SessionResult{}, false
	}
	return *e.result, true
}

// CurrentStatus reports the lifecycle phase.
func (e *Engine) CurrentStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Index reports the current question index.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Remaining reports the seconds left on the current question.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// Subscribe returns a channel of engine snapshots plus a cancel function. The
// channel receives the current state immediately, then every change, and is
// closed when the session ends. The caller must invoke cancel to avoid leaks
// unless the channel has been closed.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	e.mu.Lock()
	ch <- e.snapshotLocked()
	if e.status == StatusCompleted || e.status == StatusCanceled {
		close(ch)
		e.mu.Unlock()
		return ch, func() {}
	}
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) advanceLocked(isTimeout bool) {
	if e.status != StatusActive {
		return
	}
	if e.index < len(e.quiz.Questions)-1 {
		e.index++
		e.remaining = e.timePerQuestion()
		e.bindCountdownLocked()
		e.log.Debug("advanced to next question",
			zap.String("quizId", e.quiz.ID),
			zap.Int("index", e.index),
			zap.Bool("timeout", isTimeout))
		e.broadcastLocked()
		return
	}
	e.completeLocked(isTimeout)
}

func (e *Engine) completeLocked(isTimeout bool) {
	e.cancelCountdownLocked()
	result := ComputeResult(e.quiz, e.answers, e.now())
	e.result = &result
	e.status = StatusCompleted
	e.log.Info("session completed",
		zap.String("quizId", e.quiz.ID),
		zap.Int("correct", result.Correct),
		zap.Int("total", result.Total),
		zap.Bool("timeout", isTimeout))
	e.broadcastLocked()
	e.closeSubscribersLocked()
}

// bindCountdownLocked replaces the live countdown binding with a fresh one.
func (e *Engine) bindCountdownLocked() {
	e.cancelCountdownLocked()
	gen := e.gen
	ticks, stop := e.ticks(time.Second)
	stopCh := make(chan struct{})
	var once sync.Once
	e.cancelTick = func() {
		once.Do(func() {
			stop()
			close(stopCh)
		})
	}
	go func() {
		for {
			select {
			case <-stopCh:
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				if !e.tick(gen) {
					return
				}
			}
		}
	}()
}

// cancelCountdownLocked bumps the binding generation so any in-flight tick
// from the old binding is rejected, then stops its tick source.
func (e *Engine) cancelCountdownLocked() {
	e.gen++
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
}

// tick applies one countdown second. It reports whether the binding that
// delivered the tick is still current and should keep ticking.
func (e *Engine) tick(gen int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.status != StatusActive {
		return false
	}
	e.remaining--
	if e.remaining > 0 {
		e.broadcastLocked()
		return true
	}
	e.advanceLocked(true)
	return false
}

func (e *Engine) timePerQuestion() int {
	return domain.ClampTimePerQuestion(e.quiz.TimePerQuestion)
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:    e.status,
		Index:     e.index,
		Remaining: e.remaining,
		Result:    e.result,
	}
	if e.index < len(e.quiz.Questions) {
		snap.Question = e.quiz.Questions[e.index].Clone()
	}
	return snap
}

func (e *Engine) broadcastLocked() {
	snap := e.snapshotLocked()
	for ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest snapshot so a slow observer never blocks the engine.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (e *Engine) closeSubscribersLocked() {
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
}
