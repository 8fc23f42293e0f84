package tui

import (
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/muesli/termenv"
)

// Badge renders a category as its glyph and label in the category's accent colour.
func Badge(p termenv.Profile, c domain.Category) string {
	d := c.Display()
	return p.String(" " + d.Glyph + " " + d.Label + " ").
		Foreground(p.Color(d.Accent)).
		Bold().
		String()
}

// BadgeFunc binds Badge to a profile, for runner.WithTextHandlerBadge.
func BadgeFunc(p termenv.Profile) func(domain.Category) string {
	return func(c domain.Category) string {
		return Badge(p, c)
	}
}
