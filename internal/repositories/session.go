package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/shared"
)

// SessionRepository stores the active [models.Session]. Saving a session replaces any previous one.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Save replaces the stored session with s, assigning it an ID.
func (r *SessionRepository) Save(s *models.Session) error {
	if s.Token == "" {
		return fmt.Errorf("%w: session token is required", shared.ErrInvalidInput)
	}
	s.ID = shared.GenerateID()

	return inTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}

		query := `
			INSERT INTO sessions (id, token, user_id, username, email, issued_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.Exec(query, s.ID, s.Token, s.User.ID, s.User.Username, s.User.Email, s.IssuedAt.UTC(), s.ExpiresAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// Current returns the stored session.
//
// It returns [shared.ErrNotAuthenticated] when there is none and [shared.ErrSessionExpired] when it has expired.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := `
		SELECT id, token, user_id, username, email, issued_at, expires_at
		FROM sessions
		ORDER BY issued_at DESC
		LIMIT 1
	`

	var s models.Session
	err := r.db.QueryRow(query).Scan(&s.ID, &s.Token, &s.User.ID, &s.User.Username, &s.User.Email, &s.IssuedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if !s.Valid(r.now()) {
		return &s, shared.ErrSessionExpired
	}
	return &s, nil
}

// Clear deletes every stored session.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions that expired before now and returns how many were removed.
func (r *SessionRepository) PurgeExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}
