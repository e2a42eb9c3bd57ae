package prompt

import (
	"context"

	"server/internal/domain/thumb"
)

// Request carries the structured generation inputs to be turned into a final
// image prompt.
type Request struct {
	Title       string
	Style       thumb.Style
	AspectRatio thumb.AspectRatio
	ColorScheme thumb.ColorScheme
	TextOverlay bool
	UserPrompt  string
}

// Refiner produces one final image-generation prompt from structured inputs.
// Implementations make a single attempt; retrying is the caller's decision.
type Refiner interface {
	Refine(ctx context.Context, req Request) (string, error)
}
