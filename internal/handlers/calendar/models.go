package calendar

import "time"

// PendingDeletion is the deletion awaiting a yes/no answer. Title is
// empty when the event was referenced by its start time.
type PendingDeletion struct {
	Title string    `json:"title,omitempty"`
	Start time.Time `json:"start,omitempty"`
}

// Display layouts matching spoken confirmations.
const (
	dateLayout     = "Monday, January 2, 2006"
	dateTimeLayout = "Monday, January 2, 2006, 03:04 PM"
)
