package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`
	Revision  uint64 `json:"revision"`

	ViewState     *ViewState  `json:"view_state,omitempty"`
	Steps         *StepsDelta `json:"steps,omitempty"`
	Draft         *Draft      `json:"draft,omitempty"`
	SubmitPending *bool       `json:"submit_pending,omitempty"`
}

// StepsDelta describes how the step list changed.
// Clients apply removals, then additions, then the order if present.
type StepsDelta struct {
	Added   []Step   `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`

	// Order is the full ID order, sent only when the relative order of surviving steps changed.
	Order []string `json:"order,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{
		SessionID: newSnap.SessionID,
		Revision:  newSnap.Revision,
	}

	if oldSnap == nil || oldSnap.ViewState != newSnap.ViewState {
		vs := newSnap.ViewState
		diff.ViewState = &vs
	}
	if oldSnap == nil || oldSnap.Draft != newSnap.Draft {
		d := newSnap.Draft
		diff.Draft = &d
	}
	if oldSnap == nil || oldSnap.SubmitPending != newSnap.SubmitPending {
		p := newSnap.SubmitPending
		diff.SubmitPending = &p
	}
	diff.Steps = diffSteps(oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffSteps(old, new *Snapshot) *StepsDelta {
	if old == nil {
		if len(new.Steps) == 0 {
			return nil
		}
		return &StepsDelta{Added: append([]Step(nil), new.Steps...)}
	}

	oldIDs := make(map[string]struct{}, len(old.Steps))
	for _, s := range old.Steps {
		oldIDs[s.ID] = struct{}{}
	}
	newIDs := make(map[string]struct{}, len(new.Steps))
	for _, s := range new.Steps {
		newIDs[s.ID] = struct{}{}
	}

	delta := &StepsDelta{}
	for _, s := range new.Steps {
		if _, ok := oldIDs[s.ID]; !ok {
			delta.Added = append(delta.Added, s)
		}
	}
	var survivorsOld []string
	for _, s := range old.Steps {
		if _, ok := newIDs[s.ID]; !ok {
			delta.Removed = append(delta.Removed, s.ID)
			continue
		}
		survivorsOld = append(survivorsOld, s.ID)
	}

	// Appends keep the surviving order; anything else ships the full order.
	var survivorsNew []string
	for _, s := range new.Steps {
		if _, ok := oldIDs[s.ID]; ok {
			survivorsNew = append(survivorsNew, s.ID)
		}
	}
	if !sameOrder(survivorsOld, survivorsNew) || !appendedAtEnd(new, oldIDs) {
		delta.Order = make([]string, len(new.Steps))
		for i, s := range new.Steps {
			delta.Order[i] = s.ID
		}
	}

	if len(delta.Added) == 0 && len(delta.Removed) == 0 && delta.Order == nil {
		return nil
	}
	return delta
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// appendedAtEnd reports whether every new step sits after all surviving ones.
func appendedAtEnd(s *Snapshot, oldIDs map[string]struct{}) bool {
	seenNew := false
	for _, st := range s.Steps {
		_, existed := oldIDs[st.ID]
		if !existed {
			seenNew = true
		} else if seenNew {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.ViewState == nil &&
		d.Steps == nil &&
		d.Draft == nil &&
		d.SubmitPending == nil
}
