package mindmeld

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mindmeld/config"
	"mindmeld/logger"
	"mindmeld/models"

	"github.com/google/uuid"
)

type GuessGenerator interface {
	GenerateGuess(ctx context.Context, req GuessRequest) (string, error)
}

type MatchJudge interface {
	IsMatch(ctx context.Context, a, b string) (bool, error)
}

type GameRecorder interface {
	Record(ctx context.Context, rounds []models.Round, finalWord string) (RecordResult, error)
}

type KnownWordsSource interface {
	KnownWords(ctx context.Context) ([]string, error)
}

// WordChecker validates a word against the dictionary and the words
// already used.
type WordChecker interface {
	Check(word string, used ...string) error
}

// PlayerWordChecker rejects empty player words and words already used.
type PlayerWordChecker interface {
	CheckUnused(word string, used ...string) error
}

type session struct {
	mu        sync.Mutex
	id        string
	state     string
	round     int
	rounds    []models.Round
	pending   *PendingGuess
	deadline  time.Time
	finalWord string
	newWords  []string
	errMsg    string
	createdAt time.Time
	updatedAt time.Time
}

// SessionView is the client-visible state of a game. The AI word of the
// round in progress is never exposed.
type SessionView struct {
	ID        string         `json:"id"`
	State     string         `json:"state"`
	Round     int            `json:"round"`
	Rounds    []models.Round `json:"rounds"`
	AiReady   bool           `json:"aiReady"`
	Deadline  *time.Time     `json:"deadline,omitempty"`
	FinalWord string         `json:"finalWord,omitempty"`
	NewWords  []string       `json:"newWords,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Sessions holds the games in progress. Each game has at most one AI guess
// generating at a time; round n+1 is generated only after round n is judged.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	closed   bool

	generator GuessGenerator
	judge     MatchJudge
	validator PlayerWordChecker
	recorder  GameRecorder
	known     KnownWordsSource
	log       *logger.Logger

	roundLength time.Duration
	ttl         time.Duration
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// bgMu guards stopping and wg.Add. It is never held with another lock.
	bgMu     sync.Mutex
	stopping bool
	wg       sync.WaitGroup
}

func NewSessions(generator GuessGenerator, judge MatchJudge, validator PlayerWordChecker, recorder GameRecorder, known KnownWordsSource, log *logger.Logger, conf config.GameConfig) *Sessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sessions{
		sessions:    map[string]*session{},
		generator:   generator,
		judge:       judge,
		validator:   validator,
		recorder:    recorder,
		known:       known,
		log:         log.With("service", "GameSessions"),
		roundLength: conf.RoundLength(),
		ttl:         conf.SessionTTL(),
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start creates a game and begins generating the AI's first word in the
// background.
func (m *Sessions) Start(ctx context.Context) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return SessionView{}, ErrSessionClosed
	}

	now := m.now()
	s := &session{
		id:        uuid.NewString(),
		state:     models.GAME_STATE_AWAITING_USER_GUESS,
		round:     1,
		createdAt: now,
		updatedAt: now,
	}
	s.mu.Lock()
	s.pending = m.generate(s, GuessRequest{})
	view := s.view()
	s.mu.Unlock()

	m.sessions[s.id] = s
	m.log.Info("game started", "game_id", s.id)
	return view, nil
}

func (m *Sessions) Get(id string) (SessionView, error) {
	s, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Submit plays the player's word for the current round. It waits for the
// AI guess of the round, judges the pair and moves the game forward.
func (m *Sessions) Submit(ctx context.Context, id, word string) (SessionView, error) {
	s, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	word = normalizeWord(word)

	s.mu.Lock()
	switch s.state {
	case models.GAME_STATE_AWAITING_USER_GUESS:
	case models.GAME_STATE_WAITING_FOR_AI:
		s.mu.Unlock()
		return SessionView{}, ErrSubmitInProgress
	default:
		view := s.view()
		s.mu.Unlock()
		return view, ErrSessionClosed
	}
	if !s.deadline.IsZero() && m.now().After(s.deadline) {
		s.state = models.GAME_STATE_LOST
		s.updatedAt = m.now()
		view := s.view()
		s.mu.Unlock()
		m.log.Info("round expired", "game_id", s.id, "round", s.round)
		return view, ErrRoundExpired
	}
	if err := m.validator.CheckUnused(word, UsedWords(s.rounds)...); err != nil {
		view := s.view()
		s.mu.Unlock()
		return view, err
	}
	s.state = models.GAME_STATE_WAITING_FOR_AI
	pending := s.pending
	s.mu.Unlock()

	aiWord, genErr := pending.Wait(ctx)
	if genErr != nil && ctx.Err() != nil {
		s.mu.Lock()
		s.state = models.GAME_STATE_AWAITING_USER_GUESS
		s.mu.Unlock()
		return SessionView{}, genErr
	}
	if genErr != nil {
		s.mu.Lock()
		s.fail(genErr, m.now())
		view := s.view()
		s.mu.Unlock()
		return view, nil
	}

	match, err := m.judge.IsMatch(ctx, word, aiWord)
	if err != nil {
		m.log.Warn("match check failed, treating as no match", "game_id", s.id, "error", err)
	}

	s.mu.Lock()
	s.rounds = append(s.rounds, models.Round{RoundNumber: s.round, UserWord: word, AiWord: aiWord})
	s.updatedAt = m.now()
	if !match {
		s.round++
		s.deadline = s.updatedAt.Add(m.roundLength)
		s.state = models.GAME_STATE_AWAITING_USER_GUESS
		s.pending = m.generate(s, GuessRequest{
			PrevUserWord: word,
			PrevAiWord:   aiWord,
			History:      append([]models.Round(nil), s.rounds...),
		})
		view := s.view()
		s.mu.Unlock()
		return view, nil
	}

	s.state = models.GAME_STATE_WON
	s.finalWord = word
	s.deadline = time.Time{}
	rounds := append([]models.Round(nil), s.rounds...)
	s.mu.Unlock()

	m.log.Info("game won", "game_id", s.id, "rounds", len(rounds), "word", word)
	newWords := m.newWords(ctx, rounds, word)

	s.mu.Lock()
	s.newWords = newWords
	view := s.view()
	s.mu.Unlock()

	m.record(s.id, rounds, word)
	return view, nil
}

// Sweep drops games idle for longer than the TTL and ends rounds whose
// deadline has passed. It returns how many games were dropped.
func (m *Sessions) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		if s.state == models.GAME_STATE_AWAITING_USER_GUESS && !s.deadline.IsZero() && now.After(s.deadline) {
			s.state = models.GAME_STATE_LOST
			s.updatedAt = now
		}
		idle := m.ttl > 0 && now.Sub(s.updatedAt) > m.ttl && s.state != models.GAME_STATE_WAITING_FOR_AI
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops background generation and waits for it and any pending
// recordings to finish.
func (m *Sessions) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.bgMu.Lock()
	m.stopping = true
	m.bgMu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// goBackground registers one background task, or reports false once Close
// has started.
func (m *Sessions) goBackground() bool {
	m.bgMu.Lock()
	defer m.bgMu.Unlock()
	if m.stopping {
		return false
	}
	m.wg.Add(1)
	return true
}

func (m *Sessions) lookup(id string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// generate starts the AI guess for s. The caller holds s.mu; the pending
// guess is resolved even if the generator panics.
func (m *Sessions) generate(s *session, req GuessRequest) *PendingGuess {
	p := NewPendingGuess()
	if !m.goBackground() {
		p.Resolve("", ErrSessionClosed)
		s.fail(ErrSessionClosed, m.now())
		return p
	}
	go func() {
		defer m.wg.Done()
		var (
			word string
			err  error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("guess generation panicked: %v", r)
			}
			p.Resolve(word, err)
			if err != nil {
				m.log.Warn("guess generation failed", "game_id", s.id, "error", err)
				s.mu.Lock()
				if s.pending == p && s.state == models.GAME_STATE_AWAITING_USER_GUESS {
					s.fail(err, m.now())
				}
				s.mu.Unlock()
			}
		}()
		word, err = m.generator.GenerateGuess(m.ctx, req)
	}()
	return p
}

func (m *Sessions) newWords(ctx context.Context, rounds []models.Round, finalWord string) []string {
	if m.known == nil {
		return nil
	}
	known, err := m.known.KnownWords(ctx)
	if err != nil {
		m.log.Warn("known words lookup failed", "error", err)
		return nil
	}
	return NewWords(known, rounds, finalWord)
}

func (m *Sessions) record(id string, rounds []models.Round, finalWord string) {
	if m.recorder == nil {
		return
	}
	if !m.goBackground() {
		m.log.Warn("registry closed, game not recorded", "game_id", id)
		return
	}
	go func() {
		defer m.wg.Done()
		res, err := m.recorder.Record(m.ctx, rounds, finalWord)
		if err != nil {
			m.log.Warn("game recording failed", "game_id", id, "inserted", res.Inserted, "error", err)
			return
		}
		m.log.Info("game recorded", "game_id", id, "inserted", res.Inserted)
	}()
}

func (s *session) fail(err error, now time.Time) {
	s.state = models.GAME_STATE_FAILED
	s.updatedAt = now
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		s.errMsg = "the AI could not come up with a new word"
		return
	}
	s.errMsg = err.Error()
}

func (s *session) view() SessionView {
	v := SessionView{
		ID:        s.id,
		State:     s.state,
		Round:     s.round,
		Rounds:    append([]models.Round{}, s.rounds...),
		AiReady:   s.pending != nil && s.pending.Ready(),
		FinalWord: s.finalWord,
		NewWords:  s.newWords,
		Error:     s.errMsg,
	}
	if !s.deadline.IsZero() {
		d := s.deadline
		v.Deadline = &d
	}
	return v
}
