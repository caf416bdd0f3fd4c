package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/scoring"
)

// DefaultObservationDelay is the pause between the last answer arriving and the question closing.
const DefaultObservationDelay = 2 * time.Second

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Broadcaster delivers events to a single connection or to every member of a room.
type Broadcaster interface {
	Send(connID string, event domain.Event)
	Broadcast(room string, event domain.Event)
	JoinRoom(room, connID string)
	LeaveRoom(room, connID string)
	CloseRoom(room string)
}

// GameService routes connection events to the owning session and emits the resulting events.
// Each session is locked for the full handler, including emission, so its events leave in order.
type GameService struct {
	registry         *Registry
	quizzes          QuizRepository
	out              Broadcaster
	observationDelay time.Duration
	log              zerolog.Logger
}

func NewGameService(registry *Registry, quizzes QuizRepository, out Broadcaster, observationDelay time.Duration, log zerolog.Logger) *GameService {
	if observationDelay <= 0 {
		observationDelay = DefaultObservationDelay
	}
	return &GameService{
		registry:         registry,
		quizzes:          quizzes,
		out:              out,
		observationDelay: observationDelay,
		log:              log.With().Str("component", "game_service").Logger(),
	}
}

// CreateGame opens a game for an already verified host. Repeated calls from the same host return the
// game it already runs.
func (s *GameService) CreateGame(ctx context.Context, hostConn, quizID string) (string, error) {
	if existing, ok := s.registry.LookupByHostConnection(hostConn); ok {
		s.out.Send(hostConn, gameCreated(existing.Code()))
		return existing.Code(), nil
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if !errors.Is(err, domain.ErrQuizNotFound) {
			s.log.Error().Err(err).Str("quiz_id", quizID).Msg("load quiz failed")
		}
		return "", domain.ErrNoQuestions
	}
	if err := quiz.Validate(); err != nil {
		return "", err
	}

	session, created, err := s.registry.Create(ctx, quiz, hostConn)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	s.out.JoinRoom(session.Code(), hostConn)
	s.out.Send(hostConn, gameCreated(session.Code()))
	if created {
		s.log.Info().
			Str("game_code", session.Code()).
			Str("quiz_id", quizID).
			Str("host_conn", hostConn).
			Msg("game created")
	}
	return session.Code(), nil
}

// JoinGame adds conn to the roster of the game with the given code.
func (s *GameService) JoinGame(ctx context.Context, conn, code, username string) error {
	code = normalizeCode(code)
	if !scoring.IsGameCode(code) {
		return domain.ErrGameNotFound
	}
	session, ok := s.registry.LookupByCode(code)
	if !ok {
		return domain.ErrGameNotFound
	}
	if prev, ok := s.registry.LookupByPlayerConnection(conn); ok && prev != session {
		s.withSession(prev, func() { s.leaveLocked(prev, conn) })
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Status() == domain.StatusFinished {
		return domain.ErrGameNotFound
	}

	count := session.AddPlayer(conn, username)
	if err := s.registry.AttachPlayer(conn, session); err != nil {
		session.RemovePlayer(conn)
		return err
	}
	s.out.JoinRoom(code, conn)
	s.out.Broadcast(code, domain.Event{
		Type:    domain.EventPlayerJoined,
		Payload: domain.RosterPayload{Username: username, PlayerCount: count},
	})
	s.out.Send(conn, domain.Event{
		Type:    domain.EventGameStatus,
		Payload: domain.GameStatusPayload{Status: session.Status(), PlayerCount: count},
	})
	s.log.Info().Str("game_code", code).Str("conn_id", conn).Str("username", username).Msg("player joined")
	return nil
}

// StartGame opens the first question.
func (s *GameService) StartGame(ctx context.Context, hostConn string) error {
	session, err := s.hostSession(hostConn)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	switch session.Status() {
	case domain.StatusFinished:
		return domain.ErrGameNotFound
	case domain.StatusWaiting:
	default:
		return domain.ErrGameAlreadyStarted
	}
	if session.PlayerCount() == 0 {
		return domain.ErrNoPlayers
	}
	if err := s.startQuestionLocked(session); err != nil {
		return err
	}
	s.log.Info().Str("game_code", session.Code()).Int("players", session.PlayerCount()).Msg("game started")
	return nil
}

// SubmitAnswer records a player's answer. Duplicate or out-of-phase submissions are ignored.
func (s *GameService) SubmitAnswer(ctx context.Context, conn, optionID string) error {
	session, ok := s.registry.LookupByPlayerConnection(conn)
	if !ok {
		return domain.ErrGameNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	outcome, err := session.SubmitAnswer(conn, optionID)
	if err != nil {
		return err
	}
	if !outcome.Accepted {
		return nil
	}
	s.out.Send(conn, domain.Event{
		Type: domain.EventAnswerFeedback,
		Payload: domain.AnswerFeedbackPayload{
			Correct:      outcome.Correct,
			ShowFeedback: session.ShowAnswerFeedback(),
		},
	})
	s.observeIfCompleteLocked(session)
	return nil
}

// NextQuestion advances the game. An active question is closed and scored first; advancing past the
// last question finishes the game.
func (s *GameService) NextQuestion(ctx context.Context, hostConn string) error {
	session, err := s.hostSession(hostConn)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	switch session.Status() {
	case domain.StatusFinished:
		return domain.ErrGameNotFound
	case domain.StatusWaiting:
		return domain.ErrGameNotStarted
	case domain.StatusQuestion:
		s.endQuestionLocked(session)
	}

	if session.IsLastQuestion() {
		s.finishGameLocked(ctx, session, "quiz complete")
		return nil
	}
	return s.startQuestionLocked(session)
}

// EndGame finishes the host's game immediately.
func (s *GameService) EndGame(ctx context.Context, hostConn string) error {
	session, err := s.hostSession(hostConn)
	if err != nil {
		return err
	}
	s.withSession(session, func() { s.finishGameLocked(ctx, session, "ended by host") })
	return nil
}

// Disconnect handles a dropped connection: a host ends its game, a player leaves the roster.
func (s *GameService) Disconnect(ctx context.Context, conn string) {
	if session, ok := s.registry.LookupByHostConnection(conn); ok {
		s.withSession(session, func() { s.finishGameLocked(ctx, session, "host disconnected") })
	}
	if session, ok := s.registry.LookupByPlayerConnection(conn); ok {
		s.withSession(session, func() { s.leaveLocked(session, conn) })
	}
}

// Snapshot describes a live game.
func (s *GameService) Snapshot(code string) (domain.GameSnapshot, error) {
	code = normalizeCode(code)
	if !scoring.IsGameCode(code) {
		return domain.GameSnapshot{}, domain.ErrGameNotFound
	}
	session, ok := s.registry.LookupByCode(code)
	if !ok {
		return domain.GameSnapshot{}, domain.ErrGameNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Status() == domain.StatusFinished {
		return domain.GameSnapshot{}, domain.ErrGameNotFound
	}
	return session.Snapshot(), nil
}

func (s *GameService) hostSession(conn string) (*GameSession, error) {
	if session, ok := s.registry.LookupByHostConnection(conn); ok {
		return session, nil
	}
	if _, ok := s.registry.LookupByPlayerConnection(conn); ok {
		return nil, domain.ErrNotHost
	}
	return nil, domain.ErrGameNotFound
}

func (s *GameService) withSession(session *GameSession, fn func()) {
	session.mu.Lock()
	defer session.mu.Unlock()
	fn()
}

func (s *GameService) startQuestionLocked(session *GameSession) error {
	payload, err := session.StartNextQuestion()
	if err != nil {
		return err
	}
	round := session.Round()
	s.out.Broadcast(session.Code(), domain.Event{Type: domain.EventQuestionStart, Payload: payload})
	session.SetQuestionTimer(func() { s.onDeadline(session, round) })
	return nil
}

// observeIfCompleteLocked swaps the question deadline for the observation delay once every player
// on the roster has answered.
func (s *GameService) observeIfCompleteLocked(session *GameSession) {
	if session.Status() != domain.StatusQuestion || !session.AllPlayersAnswered() {
		return
	}
	round := session.Round()
	if session.ScheduleObservation(s.observationDelay, func() { s.onDeadline(session, round) }) {
		s.log.Debug().Str("game_code", session.Code()).Int("round", round).Msg("all players answered")
	}
}

func (s *GameService) onDeadline(session *GameSession, round int) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Round() != round || session.Status() != domain.StatusQuestion {
		s.log.Debug().Str("game_code", session.Code()).Int("round", round).Msg("stale question timer ignored")
		return
	}
	s.endQuestionLocked(session)
}

func (s *GameService) endQuestionLocked(session *GameSession) {
	result, ok := session.EndQuestion()
	if !ok {
		return
	}
	s.out.Broadcast(session.Code(), domain.Event{Type: domain.EventQuestionEnd, Payload: result})
	s.out.Broadcast(session.Code(), domain.Event{
		Type:    domain.EventLeaderboardUpdate,
		Payload: domain.LeaderboardPayload{Leaderboard: session.Leaderboard()},
	})
}

func (s *GameService) finishGameLocked(ctx context.Context, session *GameSession, reason string) {
	if !session.Finish() {
		return
	}
	code := session.Code()
	if err := s.registry.Remove(ctx, code); err != nil {
		s.log.Warn().Err(err).Str("game_code", code).Msg("remove game")
	}
	s.out.Broadcast(code, domain.Event{
		Type:    domain.EventGameEnd,
		Payload: domain.LeaderboardPayload{Leaderboard: session.Leaderboard()},
	})
	s.out.CloseRoom(code)
	s.log.Info().Str("game_code", code).Str("reason", reason).Msg("game finished")
}

func (s *GameService) leaveLocked(session *GameSession, conn string) {
	player, ok := session.RemovePlayer(conn)
	s.registry.DetachPlayer(conn, session)
	if !ok {
		return
	}
	s.out.LeaveRoom(session.Code(), conn)
	s.out.Broadcast(session.Code(), domain.Event{
		Type:    domain.EventPlayerLeft,
		Payload: domain.RosterPayload{Username: player.Username, PlayerCount: session.PlayerCount()},
	})
	s.log.Info().Str("game_code", session.Code()).Str("conn_id", conn).Str("username", player.Username).Msg("player left")
	s.observeIfCompleteLocked(session)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func gameCreated(code string) domain.Event {
	return domain.Event{Type: domain.EventGameCreated, Payload: domain.GameCreatedPayload{GameCode: code}}
}
