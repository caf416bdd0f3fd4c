package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"live-quiz-service/internal/domain"
)

var (
	errUnsupportedType = errors.New("unsupported message type")
	errInvalidPayload  = errors.New("invalid payload")
)

type inboundMessage struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

type createGamePayload struct {
	QuizID string `json:"quizId" validate:"required,max=64"`
}

type joinGamePayload struct {
	GameCode string `json:"gameCode" validate:"required,max=16"`
	Username string `json:"username" validate:"required,max=32"`
}

func (p *joinGamePayload) normalize() {
	p.GameCode = strings.ToUpper(strings.TrimSpace(p.GameCode))
	p.Username = strings.TrimSpace(p.Username)
}

type submitAnswerPayload struct {
	OptionID string `json:"optionId" validate:"required,max=64"`
}

// normalizer is implemented by payloads that clean up their fields before validation.
type normalizer interface {
	normalize()
}

// payloadDecoder unmarshals, normalizes and validates inbound payloads.
type payloadDecoder struct {
	validate *validator.Validate
}

func newPayloadDecoder() payloadDecoder {
	return payloadDecoder{validate: validator.New()}
}

func (d payloadDecoder) decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: malformed json", errInvalidPayload)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := d.validate.Struct(dst); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			names := make([]string, 0, len(fields))
			for _, fe := range fields {
				names = append(names, fmt.Sprintf("%s %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", errInvalidPayload, strings.Join(names, ", "))
		}
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}
