package app

import (
	"context"
	"fmt"
	"sync"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/scoring"
)

const maxCodeAttempts = 64

// CodeStore tracks which game codes are live (in-memory, Redis, etc).
type CodeStore interface {
	Reserve(ctx context.Context, code string) (bool, error)
	Release(ctx context.Context, code string) error
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithCodeGenerator replaces scoring.GenerateGameCode.
func WithCodeGenerator(gen func() string) RegistryOption {
	return func(r *Registry) { r.newCode = gen }
}

// WithSessionOptions applies opts to every session the registry creates.
func WithSessionOptions(opts ...SessionOption) RegistryOption {
	return func(r *Registry) { r.sessionOpts = append(r.sessionOpts, opts...) }
}

// Registry is the process-wide directory of live games, indexed by code, host connection and
// player connection. All three indices change under one lock.
type Registry struct {
	codes       CodeStore
	newCode     func() string
	sessionOpts []SessionOption

	mu            sync.RWMutex
	byCode        map[string]*GameSession
	byHost        map[string]*GameSession
	byPlayer      map[string]*GameSession
	playersByCode map[string]map[string]struct{}
}

func NewRegistry(codes CodeStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		codes:         codes,
		newCode:       scoring.GenerateGameCode,
		byCode:        make(map[string]*GameSession),
		byHost:        make(map[string]*GameSession),
		byPlayer:      make(map[string]*GameSession),
		playersByCode: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new waiting session for hostConn. A host that already owns a live session gets
// that session back with created=false. The code is reserved in the CodeStore without holding the
// registry lock.
func (r *Registry) Create(ctx context.Context, quiz domain.Quiz, hostConn string) (*GameSession, bool, error) {
	if existing, ok := r.LookupByHostConnection(hostConn); ok {
		return existing, false, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := r.newCode()
		if _, taken := r.LookupByCode(code); taken {
			continue
		}
		ok, err := r.codes.Reserve(ctx, code)
		if err != nil {
			return nil, false, fmt.Errorf("reserve game code: %w", err)
		}
		if !ok {
			continue
		}

		session, created := r.index(code, quiz, hostConn)
		if created {
			return session, true, nil
		}
		if session != nil {
			// the host raced in with another create; give the spare code back
			if err := r.codes.Release(ctx, code); err != nil {
				return nil, false, fmt.Errorf("release game code: %w", err)
			}
			return session, false, nil
		}
	}
	return nil, false, domain.ErrCodeSpaceExhausted
}

// index publishes a session under a reserved code. It returns the host's existing session if one
// appeared meanwhile, or a nil session when the code is already indexed by another game.
func (r *Registry) index(code string, quiz domain.Quiz, hostConn string) (*GameSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byHost[hostConn]; ok {
		return existing, false
	}
	if _, taken := r.byCode[code]; taken {
		return nil, false
	}
	session := NewGameSession(code, quiz, hostConn, r.sessionOpts...)
	r.byCode[code] = session
	r.byHost[hostConn] = session
	r.playersByCode[code] = make(map[string]struct{})
	return session, true
}

func (r *Registry) LookupByCode(code string) (*GameSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byCode[code]
	return session, ok
}

func (r *Registry) LookupByHostConnection(conn string) (*GameSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byHost[conn]
	return session, ok
}

func (r *Registry) LookupByPlayerConnection(conn string) (*GameSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byPlayer[conn]
	return session, ok
}

// AttachPlayer indexes conn as a player of session. It fails once the session has been removed.
func (r *Registry) AttachPlayer(conn string, session *GameSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byCode[session.code] != session {
		return domain.ErrGameNotFound
	}
	if prev, ok := r.byPlayer[conn]; ok && prev != session {
		delete(r.playersByCode[prev.code], conn)
	}
	r.byPlayer[conn] = session
	r.playersByCode[session.code][conn] = struct{}{}
	return nil
}

// DetachPlayer drops the player index entry for conn if it points at session.
func (r *Registry) DetachPlayer(conn string, session *GameSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byPlayer[conn] != session {
		return
	}
	delete(r.byPlayer, conn)
	delete(r.playersByCode[session.code], conn)
}

// Remove deletes every index entry of the game and then releases its code. Removing an unknown code
// is a no-op.
func (r *Registry) Remove(ctx context.Context, code string) error {
	if !r.unindex(code) {
		return nil
	}
	if err := r.codes.Release(ctx, code); err != nil {
		return fmt.Errorf("release game code: %w", err)
	}
	return nil
}

func (r *Registry) unindex(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byCode[code]
	if !ok {
		return false
	}
	for conn := range r.playersByCode[code] {
		if r.byPlayer[conn] == session {
			delete(r.byPlayer, conn)
		}
	}
	delete(r.playersByCode, code)
	if r.byHost[session.hostConn] == session {
		delete(r.byHost, session.hostConn)
	}
	delete(r.byCode, code)
	return true
}

// Len is the number of live games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}
