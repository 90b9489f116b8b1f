package audit

import "time"

// Retention windows per category. A zero window means "keep forever".
var retention = map[Category]time.Duration{
	CategoryMutation:   0,
	CategoryReadAccess: 90 * 24 * time.Hour,
	CategorySystem:     30 * 24 * time.Hour,
}

// CutoffFor returns the timestamp before which events of the category are
// eligible for purge. ok is false for categories kept forever.
func CutoffFor(cat Category, now time.Time) (cutoff time.Time, ok bool) {
	window, known := retention[cat]
	if !known || window == 0 {
		return time.Time{}, false
	}
	return now.Add(-window), true
}
