package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"study-aid-service/internal/domain"
)

const (
	DefaultGenerationCount = 10
	MinGenerationCount     = 1
	MaxGenerationCount     = 50
)

// Preferences stores the theme and the last used item count per owner.
type Preferences struct {
	slot Slot
}

func NewPreferences(slot Slot) *Preferences {
	return &Preferences{slot: slot}
}

// Theme returns the stored theme, defaulting to light.
func (p *Preferences) Theme(ctx context.Context, owner string) (domain.Theme, error) {
	raw, err := p.slot.Get(ctx, themeKey(owner))
	if errors.Is(err, ErrSlotEmpty) {
		return domain.ThemeLight, nil
	}
	if err != nil {
		return domain.ThemeLight, err
	}
	if domain.Theme(strings.TrimSpace(string(raw))) == domain.ThemeDark {
		return domain.ThemeDark, nil
	}
	return domain.ThemeLight, nil
}

func (p *Preferences) SetTheme(ctx context.Context, owner string, theme domain.Theme) error {
	if theme != domain.ThemeDark {
		theme = domain.ThemeLight
	}
	return p.slot.Set(ctx, themeKey(owner), []byte(theme))
}

// ToggleTheme flips between light and dark and returns the new theme.
func (p *Preferences) ToggleTheme(ctx context.Context, owner string) (domain.Theme, error) {
	current, err := p.Theme(ctx, owner)
	if err != nil {
		return current, err
	}
	next := domain.ThemeDark
	if current == domain.ThemeDark {
		next = domain.ThemeLight
	}
	return next, p.SetTheme(ctx, owner, next)
}

// GenerationCount returns the last used count, re-clamped to at least 1.
// Unparseable values fall back to the default.
func (p *Preferences) GenerationCount(ctx context.Context, owner string) (int, error) {
	raw, err := p.slot.Get(ctx, countKey(owner))
	if errors.Is(err, ErrSlotEmpty) {
		return DefaultGenerationCount, nil
	}
	if err != nil {
		return DefaultGenerationCount, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return DefaultGenerationCount, nil
	}
	if n < MinGenerationCount {
		n = MinGenerationCount
	}
	return n, nil
}

// SetGenerationCount stores n clamped to [1, 50] and returns the stored value.
func (p *Preferences) SetGenerationCount(ctx context.Context, owner string, n int) (int, error) {
	n = ClampCount(n)
	return n, p.slot.Set(ctx, countKey(owner), []byte(strconv.Itoa(n)))
}

// ClampCount bounds an item count to the accepted range.
func ClampCount(n int) int {
	if n < MinGenerationCount {
		return MinGenerationCount
	}
	if n > MaxGenerationCount {
		return MaxGenerationCount
	}
	return n
}
