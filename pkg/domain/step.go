package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Category groups tour steps. It is a closed enumeration.
type Category string

const (
	CategoryOnboarding     Category = "onboarding"
	CategoryGettingStarted Category = "getting-started"
	CategoryAdvanced       Category = "advanced"
	CategoryCustom         Category = "custom"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryOnboarding,
	CategoryGettingStarted,
	CategoryAdvanced,
	CategoryCustom,
}

// Display describes how a surface should present a category.
type Display struct {
	Label  string `json:"label"`
	Accent string `json:"accent"` // hex colour
	Glyph  string `json:"glyph"`
}

// CategoryDisplay is the explicit display mapping for every category.
var CategoryDisplay = map[Category]Display{
	CategoryOnboarding:     {Label: "Onboarding", Accent: "#3b82f6", Glyph: "◆"},
	CategoryGettingStarted: {Label: "Getting Started", Accent: "#22c55e", Glyph: "▶"},
	CategoryAdvanced:       {Label: "Advanced", Accent: "#a855f7", Glyph: "★"},
	CategoryCustom:         {Label: "Custom", Accent: "#f59e0b", Glyph: "●"},
}

// ParseCategory converts raw input into a Category.
// The empty string maps to CategoryCustom.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return CategoryCustom, nil
	}
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := CategoryDisplay[c]
	return ok
}

// Display returns the display entry for c, falling back to custom.
func (c Category) Display() Display {
	if d, ok := CategoryDisplay[c]; ok {
		return d
	}
	return CategoryDisplay[CategoryCustom]
}

// Step is a single committed tour step. Steps are never mutated after creation.
type Step struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
	Category    Category `json:"category" yaml:"category"`
	Duration    string   `json:"duration" yaml:"duration"`
}

// PlaceholderImage returns the generated image URI for a step title.
func PlaceholderImage(title string) string {
	return PlaceholderImageBase + "?text=" + url.QueryEscape(title)
}

// Draft holds the uncommitted editor fields.
type Draft struct {
	Title       string   `json:"title" mapstructure:"title"`
	Description string   `json:"description" mapstructure:"description"`
	Image       string   `json:"image" mapstructure:"image"`
	Category    Category `json:"category" mapstructure:"category"`
}

// NewDraft returns the empty draft.
func NewDraft() Draft {
	return Draft{Category: CategoryCustom}
}

// Template is a predefined set of draft fields offered as a quick start.
type Template struct {
	Name        string   `json:"name" yaml:"name"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Category    Category `json:"category,omitempty" yaml:"category,omitempty"`
}

// Draft converts the template into editor fields.
func (t Template) Draft() Draft {
	c := t.Category
	if c == "" {
		c = CategoryCustom
	}
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Image:       t.Image,
		Category:    c,
	}
}
