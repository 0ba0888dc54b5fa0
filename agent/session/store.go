package session

import (
	"context"
	"errors"
)

var (
	ErrStateNotFound = errors.New("session state not found")
	ErrNilState      = errors.New("session state is nil")
)

// Store is the persistence contract used by the orchestrator.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, st *State) error
	Delete(ctx context.Context, sessionID string) error
}
