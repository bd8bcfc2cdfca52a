package lifecycle

// View flattens a record for JSON responses.
func (r Record) View() map[string]any {
	view := map[string]any{
		"id":               r.ID,
		"kind":             r.Kind,
		"state":            string(r.State),
		"version":          r.Version,
		"state_entered_at": r.StateEnteredAt,
		"state_entered_by": r.StateEnteredBy,
	}
	if r.PreviousState != "" {
		view["previous_state"] = string(r.PreviousState)
	}
	for k, v := range r.Fields {
		view[k] = v
	}
	return view
}
