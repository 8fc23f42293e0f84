package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Markdown renders the visible part of a snapshot as markdown.
func Markdown(snap *domain.Snapshot) string {
	switch snap.ViewState.View {
	case domain.ViewTour:
		return tourMarkdown(snap)
	case domain.ViewEditor:
		return editorMarkdown(snap)
	default:
		return heroMarkdown(snap)
	}
}

func heroMarkdown(snap *domain.Snapshot) string {
	var b strings.Builder
	b.WriteString("# Waypoint\n\n")
	switch n := len(snap.Steps); n {
	case 0:
		b.WriteString("This tour has no steps yet.\n\n")
	case 1:
		b.WriteString("A guided tour in 1 step.\n\n")
	default:
		fmt.Fprintf(&b, "A guided tour in %d steps.\n\n", n)
	}
	b.WriteString("Type `start` to begin the tour or `edit` to author a step.\n")
	return b.String()
}

func tourMarkdown(snap *domain.Snapshot) string {
	step, ok := snap.CurrentStep()
	if !ok {
		return "# Tour\n\nNo steps yet. Type `edit` to create one.\n"
	}
	d := step.Category.Display()

	var b strings.Builder
	fmt.Fprintf(&b, "## %s %s\n\n", d.Glyph, step.Title)
	fmt.Fprintf(&b, "*%s · %s · step %d of %d*\n\n", d.Label, step.Duration, snap.ViewState.StepIndex+1, len(snap.Steps))
	b.WriteString(step.Description)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Image: %s\n\n", step.Image)
	b.WriteString(Progress(snap))
	b.WriteString("\n")
	return b.String()
}

func editorMarkdown(snap *domain.Snapshot) string {
	d := snap.Draft
	var b strings.Builder
	b.WriteString("## New step\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| title | %s |\n", cell(d.Title))
	fmt.Fprintf(&b, "| description | %s |\n", cell(d.Description))
	fmt.Fprintf(&b, "| image | %s |\n", cell(d.Image))
	fmt.Fprintf(&b, "| category | %s |\n\n", d.Category)
	if snap.SubmitPending {
		b.WriteString("Submitting...\n")
	} else {
		b.WriteString("Use `set <field> <value>`, `template <name>`, then `submit`.\n")
	}
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// Progress renders one dot per step, the current one filled.
func Progress(snap *domain.Snapshot) string {
	dots := make([]string, len(snap.Steps))
	for i := range snap.Steps {
		dots[i] = "○"
		if i == snap.ViewState.StepIndex {
			dots[i] = "●"
		}
	}
	return strings.Join(dots, " ")
}

// StepList renders the numbered step list used by the steps command.
func StepList(snap *domain.Snapshot) string {
	if len(snap.Steps) == 0 {
		return "No steps."
	}
	var b strings.Builder
	for i, s := range snap.Steps {
		marker := " "
		if i == snap.ViewState.StepIndex {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %d. [%s] %s (%s)\n", marker, i+1, s.ID, s.Title, s.Category)
	}
	return strings.TrimRight(b.String(), "\n")
}
