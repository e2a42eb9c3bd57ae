package thumb

import (
	"fmt"
	"strings"
	"time"

	"server/internal/domain"
)

// Status is the lifecycle state of a generation record. A record starts as
// pending and transitions at most once, to complete or failed.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Style enumerates the supported visual styles.
type Style string

const (
	StyleBoldGraphic    Style = "Bold & Graphic"
	StyleTechFuturistic Style = "Tech/Futuristic"
	StyleMinimalist     Style = "Minimalist"
	StylePhotorealistic Style = "Photorealistic"
	StyleIllustrated    Style = "Illustrated"
)

var styles = map[Style]struct{}{
	StyleBoldGraphic:    {},
	StyleTechFuturistic: {},
	StyleMinimalist:     {},
	StylePhotorealistic: {},
	StyleIllustrated:    {},
}

// AspectRatio enumerates the supported output shapes.
type AspectRatio string

const (
	RatioWide     AspectRatio = "16:9"
	RatioSquare   AspectRatio = "1:1"
	RatioVertical AspectRatio = "9:16"

	DefaultAspectRatio = RatioWide
)

// Size returns the pixel dimensions rendered for the ratio.
func (r AspectRatio) Size() (width, height int) {
	switch r {
	case RatioSquare:
		return 1024, 1024
	case RatioVertical:
		return 720, 1280
	default:
		return 1280, 720
	}
}

// ColorScheme enumerates the fixed palette choices.
type ColorScheme string

const (
	ColorVibrant    ColorScheme = "vibrant"
	ColorSunset     ColorScheme = "sunset"
	ColorForest     ColorScheme = "forest"
	ColorNeon       ColorScheme = "neon"
	ColorPurple     ColorScheme = "purple"
	ColorMonochrome ColorScheme = "monochrome"
	ColorOcean      ColorScheme = "ocean"
	ColorPastel     ColorScheme = "pastel"

	DefaultColorScheme = ColorVibrant
)

var colorSchemes = map[ColorScheme]struct{}{
	ColorVibrant:    {},
	ColorSunset:     {},
	ColorForest:     {},
	ColorNeon:       {},
	ColorPurple:     {},
	ColorMonochrome: {},
	ColorOcean:      {},
	ColorPastel:     {},
}

// GenerateParams are the caller-supplied inputs for one generation request.
type GenerateParams struct {
	Title       string
	UserPrompt  string
	Style       Style
	AspectRatio AspectRatio
	ColorScheme ColorScheme
	TextOverlay bool
}

// Normalize trims free-text fields and applies schema defaults for the
// optional enumerations.
func (p *GenerateParams) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.UserPrompt = strings.TrimSpace(p.UserPrompt)
	if p.AspectRatio == "" {
		p.AspectRatio = DefaultAspectRatio
	}
	if p.ColorScheme == "" {
		p.ColorScheme = DefaultColorScheme
	}
}

// Validate checks the params against the closed enum sets. The title is the
// only required free-text field.
func (p GenerateParams) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if _, ok := styles[p.Style]; !ok {
		return fmt.Errorf("%w: unknown style %q", domain.ErrInvalidInput, p.Style)
	}
	if _, ok := colorSchemes[p.ColorScheme]; !ok {
		return fmt.Errorf("%w: unknown color scheme %q", domain.ErrInvalidInput, p.ColorScheme)
	}
	switch p.AspectRatio {
	case RatioWide, RatioSquare, RatioVertical:
	default:
		return fmt.Errorf("%w: unknown aspect ratio %q", domain.ErrInvalidInput, p.AspectRatio)
	}
	return nil
}

// Record is the persisted unit representing one thumbnail request and its
// eventual result.
type Record struct {
	ID            string
	UserID        string
	Title         string
	UserPrompt    string
	RefinedPrompt string
	Style         Style
	AspectRatio   AspectRatio
	ColorScheme   ColorScheme
	TextOverlay   bool
	ImageURL      string
	Status        Status
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
