package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
)

// The recognizer's number extractor picks up arithmetic-looking fragments of
// dates (a date of 2/29/2020 also emits 29/2020 as a "number").
var arithmeticPattern = regexp.MustCompile(`[.\-+*/()\\]`)

// PartySize isolates a head-count from the generic number-entity pool.
//
// The recognizer does not exclude numbers it already consumed inside
// date/time entities, so the pool is filtered in a fixed order: drop
// arithmetic-looking artifacts, then drop any number whose resolved value
// appears inside the raw text of the datetime, date, or time entity. A single
// survivor is the answer; several survivors are deduplicated by resolved
// value with the first occurrence winning; no survivors mean the size is
// unknown and 0 is returned.
//
// This is a best-effort heuristic tied to the recognizer's emission order,
// not a guaranteed parse.
func PartySize(numberEnts []intent.Entity, dateTimeEnt, dateEnt, timeEnt *intent.Entity) int {
	if len(numberEnts) == 0 {
		return 0
	}

	candidates := make([]intent.Entity, 0, len(numberEnts))
	for _, n := range numberEnts {
		if arithmeticPattern.MatchString(n.Text) {
			continue
		}
		if consumedBy(dateTimeEnt, n) || consumedBy(dateEnt, n) || consumedBy(timeEnt, n) {
			continue
		}
		candidates = append(candidates, n)
	}

	if len(candidates) == 0 {
		return 0
	}
	// First survivor wins.
	return parseCount(candidates[0])
}

// consumedBy reports whether the number's resolved value is a fragment of
// the temporal entity's raw text, i.e. the same digits double-counted.
func consumedBy(temporal *intent.Entity, number intent.Entity) bool {
	if temporal == nil {
		return false
	}
	return strings.Contains(temporal.Text, number.LastValue())
}

func parseCount(e intent.Entity) int {
	n, err := strconv.Atoi(strings.TrimSpace(e.LastValue()))
	if err != nil {
		return 0
	}
	return n
}
