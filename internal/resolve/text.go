package resolve

import (
	"strings"

	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
)

// AttendeeList joins attendee entities into an English list: "Amy",
// "Amy, and Bo", "Amy, Bo, and Cy". Zero attendees yield an empty string.
func AttendeeList(attendees []intent.Entity) string {
	var sb strings.Builder
	for i, a := range attendees {
		switch {
		case i == 0:
			sb.WriteString(a.Text)
		case i == len(attendees)-1:
			sb.WriteString(", and ")
			sb.WriteString(a.Text)
		default:
			sb.WriteString(", ")
			sb.WriteString(a.Text)
		}
	}
	return sb.String()
}

// titleRule is one step of the title fallback chain, evaluated top to
// bottom. The ordering is the precedence; keep it auditable as a list.
type titleRule struct {
	when  func() bool
	title func() string
}

// Title synthesizes an event title. An explicit title entity wins; an
// appointment-type entity paired with a non-empty attendee list comes next;
// the generic label is last and never fails, even with no attendees.
func Title(titleEnt, appointmentEnt *intent.Entity, attendeeList string) string {
	rules := []titleRule{
		{
			when:  func() bool { return titleEnt != nil },
			title: func() string { return titleEnt.Text },
		},
		{
			when:  func() bool { return appointmentEnt != nil && attendeeList != "" },
			title: func() string { return appointmentEnt.Text + " with " + attendeeList },
		},
		{
			when:  func() bool { return true },
			title: func() string { return "Appointment with " + attendeeList },
		},
	}

	for _, r := range rules {
		if r.when() {
			return r.title()
		}
	}
	return "" // unreachable, the last rule always matches
}
