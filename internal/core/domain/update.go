package domain

import "time"

// Well-known availability ring labels. The feed may carry others; these are
// the ones rostra attaches special meaning to.
const (
	RingPreview    = "Preview"
	RingGeneral    = "General Availability"
	RingRetirement = "Retirement"
)

// Availability is one entry in an update's availability window: a ring label
// with an optional month-granularity date. A ring may repeat or be absent.
type Availability struct {
	// Ring is the availability-stage label (e.g. Preview, General
	// Availability, Retirement).
	Ring string

	// Date is the milestone date, always normalised to the first day of
	// its month. Nil when the feed carries no date for this entry.
	Date *time.Time
}

// Update is a service-update announcement record, the canonical local
// representation of one feed record. Updates are written exclusively by the
// sync engine and read-only to the query engine.
type Update struct {
	// ID is the stable external identifier assigned by the feed.
	ID string

	// Title is the human-readable headline.
	Title string

	// Body is the rich-text body as received from the feed.
	Body string

	// BodyText is the normalised plain-prose body used for full-text
	// search.
	BodyText string

	// Status is the upstream lifecycle status (e.g. "In development",
	// "Rolling out", "Launched").
	Status string

	// Locale is the announcement language tag.
	Locale string

	// Tags, Categories and Products are unordered string sets, fully
	// replaced on every sync of this record.
	Tags       []string
	Categories []string
	Products   []string

	// Availabilities is the ordered availability window.
	Availabilities []Availability

	// Metadata carries opaque upstream fields.
	Metadata map[string]any

	// CreatedAt is the upstream creation timestamp.
	CreatedAt time.Time

	// ModifiedAt is the upstream modification timestamp.
	// Invariant: ModifiedAt >= CreatedAt.
	ModifiedAt time.Time
}

// RetirementDate returns the earliest dated Retirement entry, or nil when
// the update has no dated Retirement ring.
func (u *Update) RetirementDate() *time.Time {
	var earliest *time.Time
	for i := range u.Availabilities {
		a := u.Availabilities[i]
		if a.Ring != RingRetirement || a.Date == nil {
			continue
		}
		if earliest == nil || a.Date.Before(*earliest) {
			earliest = a.Date
		}
	}
	return earliest
}

// MonthFloor normalises a time to the first day of its month in UTC.
// Retirement dates and availability milestones are stored at this
// granularity.
func MonthFloor(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
