package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
	"server/internal/domain/thumb"
	"server/internal/sqlinline"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// stubDB is an in-memory SQLExecutor keyed on the sqlinline constants the
// repositories issue.
type stubDB struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	sessions   map[string]*domain.Session
	thumbnails map[string]*thumb.Record
}

func newStubDB() *stubDB {
	return &stubDB{
		users:      make(map[string]*domain.User),
		sessions:   make(map[string]*domain.Session),
		thumbnails: make(map[string]*thumb.Record),
	}
}

func (s *stubDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch query {
	case sqlinline.QInsertSession:
		token := args[0].(string)
		s.sessions[token] = &domain.Session{
			Token:     token,
			UserID:    args[1].(string),
			ExpiresAt: args[2].(time.Time),
			CreatedAt: time.Now(),
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case sqlinline.QDeleteSession:
		token := args[0].(string)
		if _, ok := s.sessions[token]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(s.sessions, token)
		return pgconn.NewCommandTag("DELETE 1"), nil
	case sqlinline.QDeleteExpiredSessions:
		for token, session := range s.sessions {
			if session.Expired(time.Now()) {
				delete(s.sessions, token)
			}
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	case sqlinline.QDeleteThumbnailForUser:
		id, userID := args[0].(string), args[1].(string)
		rec, ok := s.thumbnails[id]
		if !ok || rec.UserID != userID {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(s.thumbnails, id)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unsupported exec: %s", firstLine(query))
}

func (s *stubDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch query {
	case sqlinline.QInsertUser:
		email := args[1].(string)
		for _, u := range s.users {
			if u.Email == email {
				return stubRow{scan: func(dest ...any) error {
					return &pgconn.PgError{
						Code:    "23505",
						Message: `duplicate key value violates unique constraint "users_email_key"`,
					}
				}}
			}
		}
		user := &domain.User{
			ID:           uuid.NewString(),
			Name:         args[0].(string),
			Email:        email,
			PasswordHash: args[2].(string),
			Country:      args[3].(string),
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		s.users[user.ID] = user
		return stubRow{scan: scanInto(user.ID, user.CreatedAt, user.UpdatedAt)}
	case sqlinline.QSelectUserByEmail:
		email := args[0].(string)
		for _, u := range s.users {
			if u.Email == email {
				return userRow(u)
			}
		}
		return stubRow{}
	case sqlinline.QSelectUserByID:
		if u, ok := s.users[args[0].(string)]; ok {
			return userRow(u)
		}
		return stubRow{}
	case sqlinline.QSelectSession:
		session, ok := s.sessions[args[0].(string)]
		if !ok || session.Expired(time.Now()) {
			return stubRow{}
		}
		return stubRow{scan: scanInto(session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)}
	case sqlinline.QInsertThumbnail:
		rec := &thumb.Record{
			ID:          uuid.NewString(),
			UserID:      args[0].(string),
			Title:       args[1].(string),
			UserPrompt:  args[2].(string),
			Style:       thumb.Style(args[3].(string)),
			AspectRatio: thumb.AspectRatio(args[4].(string)),
			ColorScheme: thumb.ColorScheme(args[5].(string)),
			TextOverlay: args[6].(bool),
			Status:      thumb.StatusPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		s.thumbnails[rec.ID] = rec
		return stubRow{scan: scanInto(rec.ID, rec.CreatedAt, rec.UpdatedAt)}
	case sqlinline.QSelectThumbnailForUser:
		rec, ok := s.thumbnails[args[0].(string)]
		if !ok || rec.UserID != args[1].(string) {
			return stubRow{}
		}
		return thumbnailRow(rec)
	case sqlinline.QMarkThumbnailComplete:
		rec, ok := s.thumbnails[args[0].(string)]
		if !ok || rec.UserID != args[1].(string) || rec.Status != thumb.StatusPending {
			return stubRow{}
		}
		rec.Status = thumb.StatusComplete
		rec.RefinedPrompt = args[2].(string)
		rec.ImageURL = args[3].(string)
		rec.UpdatedAt = time.Now()
		return stubRow{scan: scanInto(rec.UpdatedAt)}
	case sqlinline.QMarkThumbnailFailed:
		rec, ok := s.thumbnails[args[0].(string)]
		if !ok || rec.UserID != args[1].(string) || rec.Status != thumb.StatusPending {
			return stubRow{}
		}
		rec.Status = thumb.StatusFailed
		if refined := args[2].(string); refined != "" {
			rec.RefinedPrompt = refined
		}
		rec.ErrorMessage = args[3].(string)
		rec.UpdatedAt = time.Now()
		return stubRow{scan: scanInto(rec.UpdatedAt)}
	}
	return stubRow{scan: func(dest ...any) error {
		return fmt.Errorf("unsupported query: %s", firstLine(query))
	}}
}

func (s *stubDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if query != sqlinline.QListThumbnailsByUser {
		return nil, fmt.Errorf("unsupported query: %s", firstLine(query))
	}
	userID := args[0].(string)
	var records []*thumb.Record
	for _, rec := range s.thumbnails {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	rows := make([]pgx.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, thumbnailRow(rec))
	}
	return &stubRows{rows: rows}, nil
}

func (s *stubDB) thumbnail(id string) *thumb.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.thumbnails[id]; ok {
		copied := *rec
		return &copied
	}
	return nil
}

func (s *stubDB) lastThumbnail() *thumb.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.thumbnails {
		copied := *rec
		return &copied
	}
	return nil
}

func (s *stubDB) addUser(name, email, passwordHash string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user
}

func (s *stubDB) addSession(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	return token
}

func userRow(u *domain.User) stubRow {
	return stubRow{scan: scanInto(u.ID, u.Name, u.Email, u.PasswordHash, u.Country, u.CreatedAt, u.UpdatedAt)}
}

func thumbnailRow(rec *thumb.Record) stubRow {
	return stubRow{scan: scanInto(
		rec.ID,
		rec.UserID,
		rec.Title,
		rec.UserPrompt,
		rec.RefinedPrompt,
		string(rec.Style),
		string(rec.AspectRatio),
		string(rec.ColorScheme),
		rec.TextOverlay,
		rec.ImageURL,
		string(rec.Status),
		rec.ErrorMessage,
		rec.CreatedAt,
		rec.UpdatedAt,
	)}
}

// scanInto copies the given values into the scan destinations by type.
func scanInto(values ...any) func(dest ...any) error {
	return func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
		}
		for i, value := range values {
			switch d := dest[i].(type) {
			case *string:
				v, ok := value.(string)
				if !ok {
					return fmt.Errorf("scan: value %d is %T, want string", i, value)
				}
				*d = v
			case *bool:
				v, ok := value.(bool)
				if !ok {
					return fmt.Errorf("scan: value %d is %T, want bool", i, value)
				}
				*d = v
			case *time.Time:
				v, ok := value.(time.Time)
				if !ok {
					return fmt.Errorf("scan: value %d is %T, want time.Time", i, value)
				}
				*d = v
			case *any:
				*d = value
			default:
				return fmt.Errorf("scan: unsupported destination %T", dest[i])
			}
		}
		return nil
	}
}

type stubRows struct {
	rows []pgx.Row
	pos  int
	err  error
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.rows) {
		return errors.New("scan without next")
	}
	return r.rows[r.pos-1].Scan(dest...)
}

// ctxGuardDB refuses work on a dead context, the way a real pool would.
type ctxGuardDB struct {
	db *stubDB
}

func (g ctxGuardDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}
	return g.db.Exec(ctx, query, args...)
}

func (g ctxGuardDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if err := ctx.Err(); err != nil {
		return stubRow{scan: func(dest ...any) error { return err }}
	}
	return g.db.QueryRow(ctx, query, args...)
}

func (g ctxGuardDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.db.Query(ctx, query, args...)
}

func firstLine(query string) string {
	for i, c := range query {
		if c == '\n' {
			return query[:i]
		}
	}
	return query
}
