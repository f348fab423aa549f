// Package store persists interview sessions. Implementations must serialize
// access per session id; the engine requires no cross-session coordination.
package store

import (
	"context"

	"github.com/goksnair/careerframe/core"
)

// Store is the session store consulted by the Manager. Get returns
// (nil, nil) for an absent session; the Manager turns that into a
// no_active_session error at its own boundary.
type Store interface {
	Get(ctx context.Context, sessionID string) (*core.Session, error)
	Put(ctx context.Context, session *core.Session) error
	Delete(ctx context.Context, sessionID string) error
}
