package timetable

// Overlayable is a record subject to short term planning overlays
type Overlayable interface {
	STP() ShortTermPlanning
	SameIdentity(other Overlayable) bool
}

// IsSuperior decides whether candidate should replace incumbent for the same
// identity on the same day. incumbent may be nil.
func IsSuperior(candidate Overlayable, incumbent Overlayable, permanentOnly bool) bool {
	if permanentOnly {
		return candidate.STP() == Permanent
	}
	return incumbent == nil || candidate.STP() != Permanent
}

// replaces is IsSuperior with a deterministic tie break between two short
// term variants: Cancel beats New beats Overlay, and an equal variant keeps
// the incumbent.
func replaces(candidate Overlayable, incumbent Overlayable, permanentOnly bool) bool {
	if !IsSuperior(candidate, incumbent, permanentOnly) {
		return false
	}
	if incumbent == nil {
		return true
	}
	if permanentOnly && incumbent.STP() != Permanent {
		return true
	}
	return candidate.STP().rank() < incumbent.STP().rank()
}

// SelectOverlay picks the single winning entry out of candidates that are all
// active on the day in question
func SelectOverlay[T Overlayable](candidates []T, permanentOnly bool) (T, bool) {
	var winner T
	found := false

	for _, candidate := range candidates {
		var incumbent Overlayable
		if found {
			incumbent = winner
		}

		if replaces(candidate, incumbent, permanentOnly) {
			winner = candidate
			found = true
		}
	}

	return winner, found
}

// SelectOverlays groups candidates by identity, keeping the first-seen order
// of the groups, and returns the winner of each group
func SelectOverlays[T Overlayable](candidates []T, permanentOnly bool) []T {
	var winners []T
	var present []bool

	for _, candidate := range candidates {
		matched := false
		for i, winner := range winners {
			if !candidate.SameIdentity(winner) {
				continue
			}
			matched = true

			var incumbent Overlayable
			if present[i] {
				incumbent = winner
			}
			if replaces(candidate, incumbent, permanentOnly) {
				winners[i] = candidate
				present[i] = true
			}
			break
		}

		if !matched {
			winners = append(winners, candidate)
			present = append(present, replaces(candidate, nil, permanentOnly))
		}
	}

	var result []T
	for i, winner := range winners {
		if present[i] {
			result = append(result, winner)
		}
	}
	return result
}
