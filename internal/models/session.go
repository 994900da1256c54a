package models

import (
	"errors"
	"time"
)

// SessionKey is the storage key of the signed-in user record
const SessionKey = "session"

// ErrNoSession is returned when no user is signed in
var ErrNoSession = errors.New("no session")

// Session is the signed-in user record
type Session struct {
	Username  string
	Token     string
	BaseURL   string
	CreatedAt time.Time
}

// SessionStore persists the session record
type SessionStore interface {
	Get() (*Session, error)
	Set(session *Session) error
	Clear() error
}
