package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StaticRefiner builds a deterministic prompt locally. It keeps development
// environments working without a Gemini API key.
type StaticRefiner struct{}

func NewStaticRefiner() *StaticRefiner {
	return &StaticRefiner{}
}

func (s *StaticRefiner) Refine(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := cases.Title(language.Und)
	style := strings.TrimSpace(string(req.Style))
	if style == "" {
		style = "modern"
	}
	scheme := strings.TrimSpace(string(req.ColorScheme))
	if scheme == "" {
		scheme = "vibrant"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s YouTube thumbnail with the exact title text %q rendered large and readable in the foreground. ", c.String(style), req.Title)
	fmt.Fprintf(&b, "Single strong subject, %s color palette, high contrast, clean composition.", scheme)
	if req.TextOverlay {
		b.WriteString(" Bold overlay text with a thick outline.")
	}
	if extra := strings.TrimSpace(req.UserPrompt); extra != "" {
		fmt.Fprintf(&b, " %s.", strings.TrimRight(extra, "."))
	}
	return b.String(), nil
}

var _ Refiner = (*StaticRefiner)(nil)
