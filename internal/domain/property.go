package domain

// Property is the slice of a listing the calendar engine needs. The full
// listing (photos, amenities, location) lives with the marketplace service.
type Property struct {
	ID      int64
	Name    *string
	FeedURL *string // external iCal feed; nil means sync is off
}
