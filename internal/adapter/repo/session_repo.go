package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// SessionRepo persists login sessions keyed by an opaque token.
type SessionRepo struct {
	sql infra.SQLExecutor
	ttl time.Duration
}

func NewSessionRepo(sql infra.SQLExecutor, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionRepo{sql: sql, ttl: ttl}
}

// Create opens a new session for the user and returns it.
func (r *SessionRepo) Create(ctx context.Context, userID string) (*domain.Session, error) {
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(r.ttl),
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertSession, session.Token, session.UserID, session.ExpiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Lookup resolves a non-expired session token to its user id.
func (r *SessionRepo) Lookup(ctx context.Context, token string) (string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return "", domain.ErrUnauthorized
	}
	row := r.sql.QueryRow(ctx, sqlinline.QSelectSession, token)
	var session domain.Session
	if err := row.Scan(&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return session.UserID, nil
}

// Delete removes a session, logging the user out.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteSession, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired sweeps sessions past their expiry.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteExpiredSessions); err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

// TTL returns the configured session lifetime.
func (r *SessionRepo) TTL() time.Duration {
	return r.ttl
}
