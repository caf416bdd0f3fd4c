package app

import (
	"sync"
	"time"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/scoring"
)

// SessionOption customizes a GameSession at construction.
type SessionOption func(*GameSession)

// WithClock replaces time.Now, for deterministic answer timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *GameSession) { s.now = now }
}

// WithScheduler replaces the timer backend.
func WithScheduler(scheduler Scheduler) SessionOption {
	return func(s *GameSession) { s.scheduler = scheduler }
}

// WithDefaultTimer sets the question duration used when the quiz leaves it unset.
func WithDefaultTimer(seconds int) SessionOption {
	return func(s *GameSession) {
		if seconds > 0 {
			s.defaultTimer = seconds
		}
	}
}

type ledgerEntry struct {
	correct bool
	points  int
}

// GameSession is the state machine for one game.
//
// GameSession is not safe for concurrent use on its own: GameService holds mu around every
// operation and every timer callback, which gives each game a single logical dispatcher.
type GameSession struct {
	mu sync.Mutex

	code     string
	hostConn string
	quiz     domain.Quiz
	status   domain.GameStatus

	players map[string]*domain.Player
	order   []string

	questionIndex     int
	round             int
	questionStartedAt time.Time
	ledger            map[string]ledgerEntry
	lastResult        *domain.QuestionResult
	observing         bool

	timer        Timer
	defaultTimer int
	scheduler    Scheduler
	now          func() time.Time
}

// NewGameSession builds a session in the waiting phase.
func NewGameSession(code string, quiz domain.Quiz, hostConn string, opts ...SessionOption) *GameSession {
	s := &GameSession{
		code:          code,
		hostConn:      hostConn,
		quiz:          quiz,
		status:        domain.StatusWaiting,
		players:       make(map[string]*domain.Player),
		questionIndex: -1,
		ledger:        make(map[string]ledgerEntry),
		defaultTimer:  domain.DefaultTimerSeconds,
		scheduler:     SystemScheduler{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GameSession) Code() string              { return s.code }
func (s *GameSession) HostConn() string          { return s.hostConn }
func (s *GameSession) Status() domain.GameStatus { return s.status }
func (s *GameSession) PlayerCount() int          { return len(s.players) }
func (s *GameSession) QuestionIndex() int        { return s.questionIndex }
func (s *GameSession) ShowAnswerFeedback() bool  { return s.quiz.ShowAnswerFeedback }

// Round identifies the current question activation. Timer callbacks compare it to detect staleness.
func (s *GameSession) Round() int { return s.round }

// TimerDuration is the per-question answer window.
func (s *GameSession) TimerDuration() time.Duration {
	seconds := s.quiz.TimerSeconds
	if seconds <= 0 {
		seconds = s.defaultTimer
	}
	return time.Duration(seconds) * time.Second
}

// Player returns a copy of the roster entry for conn.
func (s *GameSession) Player(conn string) (domain.Player, bool) {
	p, ok := s.players[conn]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

// AddPlayer inserts or replaces the player for conn with a zero score and returns the roster size.
// Joining is allowed in every phase.
func (s *GameSession) AddPlayer(conn, username string) int {
	if _, ok := s.players[conn]; !ok {
		s.order = append(s.order, conn)
	}
	delete(s.ledger, conn)
	s.players[conn] = &domain.Player{
		ConnID:   conn,
		Username: username,
	}
	return len(s.players)
}

// RemovePlayer drops conn from the roster together with any unscored answer.
func (s *GameSession) RemovePlayer(conn string) (domain.Player, bool) {
	p, ok := s.players[conn]
	if !ok {
		return domain.Player{}, false
	}
	delete(s.players, conn)
	delete(s.ledger, conn)
	for i, c := range s.order {
		if c == conn {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return *p, true
}

// StartNextQuestion activates the following question and returns what players may see of it.
// The caller arms the deadline with SetQuestionTimer.
func (s *GameSession) StartNextQuestion() (domain.QuestionPayload, error) {
	if s.status == domain.StatusFinished || s.questionIndex+1 >= len(s.quiz.Questions) {
		return domain.QuestionPayload{}, domain.ErrNoQuestions
	}
	s.ClearQuestionTimer()

	s.questionIndex++
	s.round++
	s.observing = false
	s.ledger = make(map[string]ledgerEntry)
	for _, p := range s.players {
		p.CurrentAnswer = ""
		p.AnswerTimestamp = time.Time{}
	}
	s.questionStartedAt = s.now()
	s.status = domain.StatusQuestion

	q := s.quiz.Questions[s.questionIndex]
	options := make([]domain.OptionView, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, domain.OptionView{ID: opt.ID, Text: opt.Text})
	}
	return domain.QuestionPayload{
		QuestionIndex:  s.questionIndex,
		TotalQuestions: len(s.quiz.Questions),
		QuestionText:   q.Text,
		Options:        options,
		TimerSeconds:   int(s.TimerDuration() / time.Second),
	}, nil
}

// SubmitAnswer records the first answer of conn for the active question. Later submissions, unknown
// players and submissions outside the question phase come back with Accepted=false. Points are held
// in the ledger until EndQuestion commits them.
func (s *GameSession) SubmitAnswer(conn, optionID string) (domain.AnswerOutcome, error) {
	if s.status != domain.StatusQuestion {
		return domain.AnswerOutcome{}, nil
	}
	p, ok := s.players[conn]
	if !ok || p.HasAnswered() {
		return domain.AnswerOutcome{}, nil
	}
	q := s.quiz.Questions[s.questionIndex]
	opt, ok := q.Option(optionID)
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrOptionNotFound
	}

	at := s.now()
	p.CurrentAnswer = optionID
	p.AnswerTimestamp = at

	points := 0
	if opt.Correct {
		elapsed := at.Sub(s.questionStartedAt).Seconds()
		points = scoring.Score(elapsed, s.TimerDuration().Seconds())
	}
	s.ledger[conn] = ledgerEntry{correct: opt.Correct, points: points}
	return domain.AnswerOutcome{Accepted: true, Correct: opt.Correct}, nil
}

// AllPlayersAnswered is false for an empty roster.
func (s *GameSession) AllPlayersAnswered() bool {
	if len(s.players) == 0 {
		return false
	}
	for _, p := range s.players {
		if !p.HasAnswered() {
			return false
		}
	}
	return true
}

// EndQuestion commits ledger points and moves to the leaderboard phase. Outside the question phase it
// does nothing and returns ok=false, so a late deadline after an early end cannot score twice.
func (s *GameSession) EndQuestion() (result *domain.QuestionResult, ok bool) {
	if s.status != domain.StatusQuestion {
		return nil, false
	}
	s.ClearQuestionTimer()

	q := s.quiz.Questions[s.questionIndex]
	result = &domain.QuestionResult{
		CorrectOptionID:    q.CorrectOptionID(),
		PlayerResults:      make([]domain.PlayerResult, 0, len(s.order)),
		ShowAnswerFeedback: s.quiz.ShowAnswerFeedback,
	}
	for _, conn := range s.order {
		p := s.players[conn]
		entry := s.ledger[conn]
		p.Score += entry.points
		result.PlayerResults = append(result.PlayerResults, domain.PlayerResult{
			ConnID:   conn,
			Username: p.Username,
			Correct:  entry.correct,
			Points:   entry.points,
		})
	}
	s.ledger = make(map[string]ledgerEntry)
	s.lastResult = result
	s.status = domain.StatusLeaderboard
	return result, true
}

// Leaderboard ranks the current roster.
func (s *GameSession) Leaderboard() []domain.LeaderboardEntry {
	return scoring.BuildLeaderboard(s.roster(), s.lastResult)
}

// IsLastQuestion reports whether the active or most recent question is the final one.
func (s *GameSession) IsLastQuestion() bool {
	return s.questionIndex == len(s.quiz.Questions)-1
}

// SetQuestionTimer arms onExpiry for the question duration, replacing any pending timer.
func (s *GameSession) SetQuestionTimer(onExpiry func()) {
	s.schedule(s.TimerDuration(), onExpiry)
}

// ScheduleObservation replaces the question deadline with the fixed delay that precedes an early end.
// It arms at most once per round and reports whether it did.
func (s *GameSession) ScheduleObservation(delay time.Duration, onElapsed func()) bool {
	if s.status != domain.StatusQuestion || s.observing {
		return false
	}
	s.observing = true
	s.schedule(delay, onElapsed)
	return true
}

// ClearQuestionTimer cancels the pending timer, if any.
func (s *GameSession) ClearQuestionTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Finish moves the session to its terminal phase and cancels timers.
// It reports false when the session had already finished.
func (s *GameSession) Finish() bool {
	if s.status == domain.StatusFinished {
		return false
	}
	s.ClearQuestionTimer()
	s.status = domain.StatusFinished
	return true
}

func (s *GameSession) Snapshot() domain.GameSnapshot {
	return domain.GameSnapshot{
		GameCode:       s.code,
		QuizID:         s.quiz.ID,
		Status:         s.status,
		PlayerCount:    len(s.players),
		QuestionIndex:  s.questionIndex,
		TotalQuestions: len(s.quiz.Questions),
	}
}

func (s *GameSession) schedule(d time.Duration, f func()) {
	s.ClearQuestionTimer()
	s.timer = s.scheduler.AfterFunc(d, f)
}

func (s *GameSession) roster() []*domain.Player {
	out := make([]*domain.Player, 0, len(s.order))
	for _, conn := range s.order {
		out = append(out, s.players[conn])
	}
	return out
}
