package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func steps(ids ...string) []Step {
	out := make([]Step, len(ids))
	for i, id := range ids {
		out[i] = Step{ID: id, Title: "Step " + id, Description: "d", Category: CategoryCustom}
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name      string
		old       *Snapshot
		new       *Snapshot
		wantNil   bool
		wantSteps *StepsDelta
		wantView  bool
		wantDraft bool
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &Snapshot{
				SessionID: "sess-1",
				ViewState: ViewState{View: ViewHero},
				Steps:     steps("1", "2"),
				Draft:     NewDraft(),
			},
			wantSteps: &StepsDelta{Added: steps("1", "2")},
			wantView:  true,
			wantDraft: true,
		},
		{
			name:    "No Changes",
			old:     &Snapshot{SessionID: "sess-1", Steps: steps("1"), Draft: NewDraft()},
			new:     &Snapshot{SessionID: "sess-1", Steps: steps("1"), Draft: NewDraft()},
			wantNil: true,
		},
		{
			name:      "Append",
			old:       &Snapshot{Steps: steps("1", "2")},
			new:       &Snapshot{Steps: steps("1", "2", "3")},
			wantSteps: &StepsDelta{Added: steps("3")},
		},
		{
			name:      "Delete",
			old:       &Snapshot{Steps: steps("1", "2", "3")},
			new:       &Snapshot{Steps: steps("1", "3")},
			wantSteps: &StepsDelta{Removed: []string{"2"}},
		},
		{
			name:      "Reorder",
			old:       &Snapshot{Steps: steps("1", "2", "3")},
			new:       &Snapshot{Steps: steps("3", "1", "2")},
			wantSteps: &StepsDelta{Order: []string{"3", "1", "2"}},
		},
		{
			name:     "View Change",
			old:      &Snapshot{ViewState: ViewState{View: ViewHero}},
			new:      &Snapshot{ViewState: ViewState{View: ViewTour}},
			wantView: true,
		},
		{
			name:      "Draft Change",
			old:       &Snapshot{Draft: NewDraft()},
			new:       &Snapshot{Draft: Draft{Title: "x", Category: CategoryCustom}},
			wantDraft: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}
			if !reflect.DeepEqual(got.Steps, tt.wantSteps) {
				t.Errorf("Diff().Steps = %+v, want %+v", got.Steps, tt.wantSteps)
			}
			if (got.ViewState != nil) != tt.wantView {
				t.Errorf("Diff().ViewState = %v, want present=%v", got.ViewState, tt.wantView)
			}
			if (got.Draft != nil) != tt.wantDraft {
				t.Errorf("Diff().Draft = %v, want present=%v", got.Draft, tt.wantDraft)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Sections Omitted", func(t *testing.T) {
		s1 := &Snapshot{ViewState: ViewState{View: ViewHero}, Steps: steps("1")}
		s2 := &Snapshot{ViewState: ViewState{View: ViewTour}, Steps: steps("1")}
		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"steps"`) {
			t.Errorf("JSON should not contain 'steps' when unchanged, got: %s", string(bytes))
		}
		if !strings.Contains(string(bytes), `"view":"tour"`) {
			t.Errorf("JSON should contain the new view, got: %s", string(bytes))
		}
	})
}
