package domain

import "time"

// RawAvailability is one availability entry as received from the feed.
// Year and Month are zero when the feed carries no date for the entry.
type RawAvailability struct {
	Ring  string
	Year  int
	Month time.Month
}

// RawUpdate is a feed record before normalisation. The sync engine converts
// it into an Update: the rich-text body is normalised to plain prose,
// availability dates are floored to the month, and modified is clamped to
// be no earlier than created.
type RawUpdate struct {
	ID             string
	Title          string
	Body           string
	Status         string
	Locale         string
	Tags           []string
	Categories     []string
	Products       []string
	Availabilities []RawAvailability
	Metadata       map[string]any
	CreatedAt      time.Time
	ModifiedAt     time.Time
}
