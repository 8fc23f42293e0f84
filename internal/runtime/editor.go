package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var categoryType = reflect.TypeOf(domain.Category(""))

// Editor holds the uncommitted draft and the pending-submission flag.
type Editor struct {
	draft   domain.Draft
	pending bool
}

// NewEditor starts with an empty draft.
func NewEditor() Editor {
	return Editor{draft: domain.NewDraft()}
}

// Draft returns the current draft.
func (e *Editor) Draft() domain.Draft {
	return e.draft
}

// UpdateField sets a single draft field by name.
// The draft is left untouched when the name or value is rejected.
func (e *Editor) UpdateField(name, value string) error {
	next := e.draft
	var (
		md      mapstructure.Metadata
		hookErr error
	)

	// mapstructure flattens hook errors to strings; keep ours for errors.Is.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    &next,
		Metadata:  &md,
		MatchName: func(key, field string) bool { return key == field },
		DecodeHook: func(from, to reflect.Type, data any) (any, error) {
			out, err := categoryHook(from, to, data)
			if err != nil {
				hookErr = err
			}
			return out, err
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build draft decoder: %w", err)
	}
	if err := dec.Decode(map[string]any{name: value}); err != nil {
		if hookErr != nil {
			return hookErr
		}
		return err
	}
	if len(md.Unused) > 0 {
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, name)
	}

	e.draft = next
	return nil
}

// categoryHook validates category values while decoding.
func categoryHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != categoryType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.ParseCategory(reflect.ValueOf(data).String())
}

// SelectTemplate overwrites the whole draft with the template's fields.
func (e *Editor) SelectTemplate(t domain.Template) {
	e.draft = t.Draft()
}

// Reset restores the empty draft.
func (e *Editor) Reset() {
	e.draft = domain.NewDraft()
}

// Validate checks the required fields and returns the trimmed draft to commit.
func (e *Editor) Validate() (domain.Draft, error) {
	d := e.draft
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)

	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return domain.Draft{}, &domain.ValidationError{Fields: missing}
	}
	return d, nil
}
