// Package session keeps interactive selection sessions alive between
// requests.
//
// A [Session] owns one [selection.Controller] bound to a collection. The
// [Registry] hands out sessions under cryptographically random ids and
// expires them after a period of inactivity: every successful lookup
// extends the deadline by the registry TTL.
//
// Workload runs stay in the session's in-memory store and disappear with
// the session.
//
// # Usage
//
//	reg := session.NewRegistry(session.DefaultTTL)
//	go reg.Run(ctx, time.Minute) // periodic cleanup
//
//	sess, err := reg.Create("fabric", controller)
//	...
//	sess, err = reg.Get(id)
//	if errors.Is(err, session.ErrExpired) {
//	    // start over
//	}
//
// [selection.Controller]: github.com/matzehuels/topoviz/pkg/selection.Controller
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/matzehuels/topoviz/pkg/selection"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session is one interactive selection bound to a collection.
type Session struct {
	ID         string
	Collection string
	Controller *selection.Controller
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// IsExpired reports whether the session is past its deadline at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
