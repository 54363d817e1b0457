// Package auth defines the admin Session that every dashboard action takes
// as an explicit argument.
package auth

import (
	"errors"
	"time"
)

var (
	// ErrNoSession is returned when an admin action is called without a session.
	ErrNoSession = errors.New("no admin session")
	// ErrSessionExpired is returned once the access token behind the session has expired.
	ErrSessionExpired = errors.New("admin session expired")
	// ErrForbidden is returned when the session role may not perform the action.
	ErrForbidden = errors.New("forbidden for this role")
)

// Session identifies the acting admin and how long the identity holds.
type Session struct {
	UserID    uint64
	Role      string
	ExpiresAt time.Time
}

// Check validates s at now. When roles are given, s.Role must be one of them.
func (s *Session) Check(now time.Time, roles ...string) error {
	if s == nil || s.UserID == 0 {
		return ErrNoSession
	}
	if !now.Before(s.ExpiresAt) {
		return ErrSessionExpired
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if r == s.Role {
			return nil
		}
	}
	return ErrForbidden
}
