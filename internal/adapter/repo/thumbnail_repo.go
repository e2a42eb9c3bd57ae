package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/domain/thumb"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// ThumbnailRepo persists generation records. Every read and write is scoped
// by the owning user; a lookup with a mismatched owner behaves exactly like a
// missing record.
type ThumbnailRepo struct {
	sql infra.SQLExecutor
}

func NewThumbnailRepo(sql infra.SQLExecutor) *ThumbnailRepo {
	return &ThumbnailRepo{sql: sql}
}

// Create inserts a new record in the pending state.
func (r *ThumbnailRepo) Create(ctx context.Context, userID string, params thumb.GenerateParams) (*thumb.Record, error) {
	rec := &thumb.Record{
		UserID:      userID,
		Title:       params.Title,
		UserPrompt:  params.UserPrompt,
		Style:       params.Style,
		AspectRatio: params.AspectRatio,
		ColorScheme: params.ColorScheme,
		TextOverlay: params.TextOverlay,
		Status:      thumb.StatusPending,
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertThumbnail,
		userID,
		params.Title,
		params.UserPrompt,
		string(params.Style),
		string(params.AspectRatio),
		string(params.ColorScheme),
		params.TextOverlay,
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create thumbnail: %w", err)
	}
	return rec, nil
}

// GetForUser fetches a record owned by userID.
func (r *ThumbnailRepo) GetForUser(ctx context.Context, id, userID string) (*thumb.Record, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectThumbnailForUser, id, userID)
	rec, err := scanThumbnail(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get thumbnail: %w", err)
	}
	return rec, nil
}

// ListByUser returns the user's records, newest first.
func (r *ThumbnailRepo) ListByUser(ctx context.Context, userID string) ([]thumb.Record, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListThumbnailsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	defer rows.Close()
	var records []thumb.Record
	for rows.Next() {
		rec, err := scanThumbnail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	return records, nil
}

// MarkComplete finalizes a pending record with its refined prompt and hosted
// image URL. A record that already reached a terminal state is not touched.
func (r *ThumbnailRepo) MarkComplete(ctx context.Context, id, userID, refinedPrompt, imageURL string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QMarkThumbnailComplete, id, userID, refinedPrompt, imageURL)
	var updatedAt any
	if err := row.Scan(&updatedAt); err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark thumbnail complete: %w", err)
	}
	return nil
}

// MarkFailed moves a pending record to the failed terminal state, keeping any
// partial fields already produced.
func (r *ThumbnailRepo) MarkFailed(ctx context.Context, id, userID, refinedPrompt, message string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QMarkThumbnailFailed, id, userID, refinedPrompt, message)
	var updatedAt any
	if err := row.Scan(&updatedAt); err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark thumbnail failed: %w", err)
	}
	return nil
}

// DeleteForUser removes a record owned by userID.
func (r *ThumbnailRepo) DeleteForUser(ctx context.Context, id, userID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteThumbnailForUser, id, userID)
	if err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanThumbnail(row pgx.Row) (*thumb.Record, error) {
	var rec thumb.Record
	var style, ratio, scheme, status string
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.UserPrompt,
		&rec.RefinedPrompt,
		&style,
		&ratio,
		&scheme,
		&rec.TextOverlay,
		&rec.ImageURL,
		&status,
		&rec.ErrorMessage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Style = thumb.Style(style)
	rec.AspectRatio = thumb.AspectRatio(ratio)
	rec.ColorScheme = thumb.ColorScheme(scheme)
	rec.Status = thumb.Status(status)
	return &rec, nil
}
