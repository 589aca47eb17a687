package models

import (
	"fmt"
	"strings"
	"time"
)

// SessionTTL matches the lifetime of the API's access tokens.
const SessionTTL = time.Hour

// User is an account on the movie API.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

// Session is a bearer token and the user it belongs to.
type Session struct {
	ID        string
	Token     string
	User      User
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewSession creates a session issued at now that expires after [SessionTTL].
func NewSession(token string, user User, now time.Time) *Session {
	return &Session{
		Token:     token,
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(SessionTTL),
	}
}

// Valid reports whether the session has a token and has not expired at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// Remaining returns the time left before expiry, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s == nil || !now.Before(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// FilterPreset is a named [FilterState] saved locally.
type FilterPreset struct {
	id        string
	name      string
	filters   FilterState
	createdAt time.Time
	updatedAt time.Time
}

// NewFilterPreset creates an unsaved preset.
func NewFilterPreset(name string, filters FilterState) *FilterPreset {
	now := time.Now()
	return &FilterPreset{name: strings.TrimSpace(name), filters: filters, createdAt: now, updatedAt: now}
}

func (p *FilterPreset) ID() string               { return p.id }
func (p *FilterPreset) Name() string             { return p.name }
func (p *FilterPreset) Filters() FilterState     { return p.filters }
func (p *FilterPreset) CreatedAt() time.Time     { return p.createdAt }
func (p *FilterPreset) UpdatedAt() time.Time     { return p.updatedAt }
func (p *FilterPreset) SetID(id string)          { p.id = id }
func (p *FilterPreset) SetFilters(f FilterState) { p.filters = f }
func (p *FilterPreset) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *FilterPreset) SetUpdatedAt(t time.Time) { p.updatedAt = t }

// Validate requires a name without whitespace and valid filters.
func (p *FilterPreset) Validate() error {
	if p.name == "" {
		return fmt.Errorf("preset name is required")
	}
	if strings.ContainsAny(p.name, " \t\n") {
		return fmt.Errorf("preset name %q must not contain whitespace", p.name)
	}
	return p.filters.Validate()
}
