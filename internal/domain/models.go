package domain

import "time"

// DefaultTimerSeconds applies when a quiz does not configure its own question duration.
const DefaultTimerSeconds = 15

// GameStatus is the lifecycle phase of a game session.
type GameStatus string

const (
	StatusWaiting     GameStatus = "waiting"
	StatusQuestion    GameStatus = "question"
	StatusLeaderboard GameStatus = "leaderboard"
	StatusFinished    GameStatus = "finished"
)

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a multiple-choice question; at least one option is correct.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// CorrectOptionID returns the first option flagged correct.
func (q Question) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}

// Option looks up an option by id.
func (q Question) Option(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Quiz is the ordered question set a game is played from.
type Quiz struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	TimerSeconds       int        `json:"timerSeconds"`
	ShowAnswerFeedback bool       `json:"showAnswerFeedback"`
	Questions          []Question `json:"questions"`
}

// Validate checks the content contract a playable quiz must satisfy.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return ErrNoQuestions
	}
	for _, question := range q.Questions {
		if len(question.Options) < 2 || question.CorrectOptionID() == "" {
			return ErrInvalidQuiz
		}
	}
	return nil
}

// Player is a roster entry keyed by the connection that joined.
type Player struct {
	ConnID          string
	Username        string
	Score           int
	CurrentAnswer   string
	AnswerTimestamp time.Time
}

// HasAnswered reports whether the player submitted for the active question.
func (p *Player) HasAnswered() bool {
	return p.CurrentAnswer != ""
}

// OptionView is an option with its correctness flag stripped.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionPayload is what players see when a question starts.
type QuestionPayload struct {
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	QuestionText   string       `json:"questionText"`
	Options        []OptionView `json:"options"`
	TimerSeconds   int          `json:"timerSeconds"`
}

// AnswerOutcome is the immediate result of a submission.
type AnswerOutcome struct {
	Accepted bool
	Correct  bool
}

// PlayerResult is one player's outcome for a finished question.
type PlayerResult struct {
	ConnID   string `json:"-"`
	Username string `json:"username"`
	Correct  bool   `json:"correct"`
	Points   int    `json:"points"`
}

// QuestionResult is produced once per question when it leaves its active phase.
type QuestionResult struct {
	CorrectOptionID    string         `json:"correctOptionId"`
	PlayerResults      []PlayerResult `json:"playerResults"`
	ShowAnswerFeedback bool           `json:"showAnswerFeedback"`
}

// ByConn indexes the per-player results by connection.
func (r *QuestionResult) ByConn() map[string]PlayerResult {
	if r == nil {
		return nil
	}
	out := make(map[string]PlayerResult, len(r.PlayerResults))
	for _, pr := range r.PlayerResults {
		out[pr.ConnID] = pr
	}
	return out
}

// LeaderboardEntry is a ranked snapshot of one player.
type LeaderboardEntry struct {
	Username          string `json:"username"`
	Score             int    `json:"score"`
	Rank              int    `json:"rank"`
	LastAnswerCorrect *bool  `json:"lastAnswerCorrect"`
	LastAnswerPoints  int    `json:"lastAnswerPoints"`
}

// GameSnapshot is a read-only view of a live game.
type GameSnapshot struct {
	GameCode       string     `json:"gameCode"`
	QuizID         string     `json:"quizId"`
	Status         GameStatus `json:"status"`
	PlayerCount    int        `json:"playerCount"`
	QuestionIndex  int        `json:"questionIndex"`
	TotalQuestions int        `json:"totalQuestions"`
}
