package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/auth"
	"live-quiz-service/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// HostVerifier validates the credential presented with create_game.
type HostVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type WSHandler struct {
	service  *app.GameService
	hub      *Hub
	hosts    HostVerifier
	decoder  payloadDecoder
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.GameService, hub *Hub, hosts HostVerifier, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		hosts:   hosts,
		decoder: newPayloadDecoder(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
}

// originChecker allows every origin when the list is empty or contains "*".
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS upgrades the request and pumps events between the connection and the game service until
// the connection drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log := h.log.With().Str("conn_id", connID).Logger()
	send := h.hub.Register(connID)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writePump(conn, send, log)
	}()
	log.Debug().Msg("connection opened")

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("unexpected close")
			}
			break
		}
		if err := h.dispatch(r.Context(), connID, token, inbound); err != nil {
			log.Debug().Err(err).Str("type", string(inbound.Type)).Msg("message rejected")
			h.hub.Send(connID, domain.NewError(publicError(err)))
		}
	}

	// the request context is done once the connection drops; cleanup must still reach Redis
	h.service.Disconnect(context.Background(), connID)
	h.hub.Unregister(connID)
	<-writerDone
	log.Debug().Msg("connection closed")
}

func (h *WSHandler) dispatch(ctx context.Context, connID, token string, msg inboundMessage) error {
	switch msg.Type {
	case domain.EventCreateGame:
		var p createGamePayload
		if err := h.decoder.decode(msg.Payload, &p); err != nil {
			return err
		}
		claims, err := h.hosts.Verify(token)
		if err != nil {
			return err
		}
		code, err := h.service.CreateGame(ctx, connID, p.QuizID)
		if err != nil {
			return err
		}
		h.log.Info().Str("conn_id", connID).Str("host_id", claims.HostID()).Str("game_code", code).Msg("host opened game")
		return nil
	case domain.EventJoinGame:
		var p joinGamePayload
		if err := h.decoder.decode(msg.Payload, &p); err != nil {
			return err
		}
		return h.service.JoinGame(ctx, connID, p.GameCode, p.Username)
	case domain.EventStartGame:
		return h.service.StartGame(ctx, connID)
	case domain.EventSubmitAnswer:
		var p submitAnswerPayload
		if err := h.decoder.decode(msg.Payload, &p); err != nil {
			return err
		}
		return h.service.SubmitAnswer(ctx, connID, p.OptionID)
	case domain.EventNextQuestion:
		return h.service.NextQuestion(ctx, connID)
	case domain.EventEndGame:
		return h.service.EndGame(ctx, connID)
	default:
		return errUnsupportedType
	}
}

func writePump(conn *websocket.Conn, send <-chan []byte, log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				_ = conn.Close()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Msg("ws write failed")
				_ = conn.Close()
				drain(send)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				drain(send)
				return
			}
		}
	}
}

// drain consumes the queue until the hub closes it.
func drain(send <-chan []byte) {
	for range send {
	}
}

// bearerToken reads the host token from ?token= or an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// publicError strips verification detail from token failures.
func publicError(err error) error {
	if errors.Is(err, domain.ErrInvalidToken) {
		return domain.ErrInvalidToken
	}
	return err
}
