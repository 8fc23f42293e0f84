package runtime

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_UpdateField(t *testing.T) {
	e := NewEditor()

	require.NoError(t, e.UpdateField("title", "Hello"))
	require.NoError(t, e.UpdateField("description", "World"))
	require.NoError(t, e.UpdateField("image", "https://img/x.png"))
	require.NoError(t, e.UpdateField("category", "advanced"))

	assert.Equal(t, domain.Draft{
		Title:       "Hello",
		Description: "World",
		Image:       "https://img/x.png",
		Category:    domain.CategoryAdvanced,
	}, e.Draft())
}

func TestEditor_UpdateFieldRejectsUnknownName(t *testing.T) {
	e := NewEditor()
	require.NoError(t, e.UpdateField("title", "kept"))

	err := e.UpdateField("duration", "5 min")

	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Equal(t, "kept", e.Draft().Title)

	assert.ErrorIs(t, e.UpdateField("TITLE", "shouted"), domain.ErrUnknownField, "field names are lowercase")
	assert.Equal(t, "kept", e.Draft().Title)
}

func TestEditor_UpdateFieldRejectsInvalidCategory(t *testing.T) {
	e := NewEditor()

	err := e.UpdateField("category", "expert")

	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	assert.Equal(t, domain.CategoryCustom, e.Draft().Category)
}

func TestEditor_SelectTemplateOverwritesDraft(t *testing.T) {
	e := NewEditor()
	require.NoError(t, e.UpdateField("image", "https://old"))

	e.SelectTemplate(domain.Template{Name: "tip", Title: "Tip", Description: "Use shortcuts"})

	assert.Equal(t, domain.Draft{
		Title:       "Tip",
		Description: "Use shortcuts",
		Category:    domain.CategoryCustom,
	}, e.Draft(), "template without category must default to custom and clear other fields")
}

func TestEditor_Validate(t *testing.T) {
	tests := []struct {
		name        string
		draft       domain.Draft
		wantMissing []string
	}{
		{"valid", domain.Draft{Title: " T ", Description: " D "}, nil},
		{"empty title", domain.Draft{Title: "", Description: "x"}, []string{"title"}},
		{"whitespace description", domain.Draft{Title: "t", Description: " \t\n"}, []string{"description"}},
		{"both", domain.Draft{}, []string{"title", "description"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Editor{draft: tt.draft}
			got, err := e.Validate()
			if tt.wantMissing == nil {
				require.NoError(t, err)
				assert.Equal(t, "T", got.Title)
				assert.Equal(t, "D", got.Description)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantMissing, ve.Fields)
			assert.Equal(t, tt.draft, e.Draft(), "draft must be unchanged")
		})
	}
}
