package domain

// ItemStatus is the review lifecycle status of a dataset item.
type ItemStatus string

// Item status values.
const (
	// StatusPending means the item is waiting in the queue for a reviewer.
	StatusPending ItemStatus = "pending"

	// StatusInReview means the item is locked by a reviewer.
	StatusInReview ItemStatus = "in_review"

	// StatusFinalized means the item is terminal and no further review
	// state changes are permitted.
	StatusFinalized ItemStatus = "finalized"
)

// validItemTransitions defines the allowed status transitions for dataset items.
// Package-level to avoid re-allocating on every call.
var validItemTransitions = map[ItemStatus][]ItemStatus{
	StatusPending:   {StatusPending, StatusInReview, StatusFinalized},
	StatusInReview:  {StatusInReview, StatusPending, StatusFinalized},
	StatusFinalized: {StatusFinalized},
}

// IsTerminal returns true if the status permits no further transitions
// other than to itself.
func (s ItemStatus) IsTerminal() bool {
	return s == StatusFinalized
}

// IsValid returns true if the status is one of the known values.
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusFinalized:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// ParseStatus maps a raw persisted status string to an ItemStatus.
// Unknown or legacy values normalize to StatusPending; the second return
// value reports whether the input was already a known status so callers
// can log a diagnostic on normalization.
func ParseStatus(raw string) (ItemStatus, bool) {
	s := ItemStatus(raw)
	if s.IsValid() {
		return s, true
	}
	return StatusPending, false
}

// ValidateTransition checks whether moving from current to requested is a
// legal item status transition. Unknown current statuses are normalized to
// pending before the check. Returns an InvalidTransitionError on rejection.
func ValidateTransition(current, requested ItemStatus) (ItemStatus, error) {
	from, _ := ParseStatus(string(current))
	to, _ := ParseStatus(string(requested))

	for _, allowed := range validItemTransitions[from] {
		if allowed == to {
			return to, nil
		}
	}

	return "", NewInvalidTransitionError(from, to)
}
