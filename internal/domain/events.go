package domain

// EventType names a message exchanged with connections.
type EventType string

// Inbound (connection -> engine).
const (
	EventCreateGame   EventType = "create_game"
	EventJoinGame     EventType = "join_game"
	EventStartGame    EventType = "start_game"
	EventSubmitAnswer EventType = "submit_answer"
	EventNextQuestion EventType = "next_question"
	EventEndGame      EventType = "end_game"
)

// Outbound (engine -> connections).
const (
	EventGameCreated       EventType = "game_created"
	EventPlayerJoined      EventType = "player_joined"
	EventPlayerLeft        EventType = "player_left"
	EventGameStatus        EventType = "game_status"
	EventQuestionStart     EventType = "question_start"
	EventAnswerFeedback    EventType = "answer_feedback"
	EventQuestionEnd       EventType = "question_end"
	EventLeaderboardUpdate EventType = "leaderboard_update"
	EventGameEnd           EventType = "game_end"
	EventError             EventType = "error"
)

// Event is the envelope delivered to one connection or to a room.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type GameCreatedPayload struct {
	GameCode string `json:"gameCode"`
}

type RosterPayload struct {
	Username    string `json:"username"`
	PlayerCount int    `json:"playerCount"`
}

type GameStatusPayload struct {
	Status      GameStatus `json:"status"`
	PlayerCount int        `json:"playerCount"`
}

type AnswerFeedbackPayload struct {
	Correct      bool `json:"correct"`
	ShowFeedback bool `json:"showFeedback"`
}

type LeaderboardPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewError builds the error event sent back to the originating connection.
func NewError(err error) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: err.Error()}}
}
