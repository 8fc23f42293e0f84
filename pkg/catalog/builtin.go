package catalog

import "github.com/aretw0/waypoint/pkg/domain"

// Builtin returns the quick templates offered by the editor out of the box.
func Builtin() []domain.Template {
	return []domain.Template{
		{
			Name:        "welcome",
			Title:       "Welcome aboard",
			Description: "Start here for a quick look at what the product can do and where everything lives.",
			Category:    domain.CategoryOnboarding,
		},
		{
			Name:        "feature-spotlight",
			Title:       "Feature spotlight",
			Description: "Walk through one feature end to end: what it is for, where to find it and how to use it.",
			Category:    domain.CategoryGettingStarted,
		},
		{
			Name:        "power-user-tip",
			Title:       "Power-user tip",
			Description: "Share a shortcut or hidden setting that saves experienced users time every day.",
			Category:    domain.CategoryAdvanced,
		},
		{
			Name:        "blank",
			Title:       "Custom step",
			Description: "Describe this step.",
		},
	}
}
