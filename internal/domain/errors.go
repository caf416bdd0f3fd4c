package domain

import "errors"

var (
	// ErrUnauthorized is returned when a host action arrives without a credential.
	ErrUnauthorized = errors.New("authentication required")
	// ErrInvalidToken indicates the host credential failed verification.
	ErrInvalidToken = errors.New("invalid token")

	// ErrGameNotFound is returned when a game code or connection maps to no live session.
	ErrGameNotFound = errors.New("game not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNotHost is returned when a player connection issues a host-only action.
	ErrNotHost = errors.New("only the host can do that")
	// ErrOptionNotFound indicates a submitted option ID is not part of the active question.
	ErrOptionNotFound = errors.New("option not found")

	// ErrNoPlayers is returned when the host starts a game nobody has joined.
	ErrNoPlayers = errors.New("no players have joined")
	// ErrNoQuestions is returned when there is no further question to play.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidQuiz indicates a question without two options or without a correct one.
	ErrInvalidQuiz = errors.New("quiz has malformed questions")
	// ErrGameAlreadyStarted is returned when start is requested outside the waiting phase.
	ErrGameAlreadyStarted = errors.New("game already started")
	// ErrGameNotStarted is returned when the host advances a game still in its lobby.
	ErrGameNotStarted = errors.New("game has not started")
	// ErrCodeSpaceExhausted is returned when no free game code was found after repeated attempts.
	ErrCodeSpaceExhausted = errors.New("could not allocate a game code")
)
