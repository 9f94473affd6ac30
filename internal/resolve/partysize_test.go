package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
)

func number(text string, value string) intent.Entity {
	return intent.Entity{Kind: intent.KindNumber, Text: text, ResolvedValues: []string{value}}
}

func TestPartySize(t *testing.T) {
	marchFirst := dt(intent.KindDate, "March 1, 1999", "1999-03-01")

	tests := []struct {
		name        string
		numbers     []intent.Entity
		dateTimeEnt *intent.Entity
		dateEnt     *intent.Entity
		timeEnt     *intent.Entity
		want        int
	}{
		{
			name:    "year double-counted by the recognizer is eliminated",
			numbers: []intent.Entity{number("2", "2"), number("1999", "1999")},
			dateEnt: marchFirst,
			want:    2,
		},
		{
			name:    "arithmetic-looking date fragment is eliminated",
			numbers: []intent.Entity{number("29/2020", "0.0144"), number("4", "4")},
			dateEnt: dt(intent.KindDate, "2/29/2020", "2020-02-29"),
			want:    4,
		},
		{
			name:        "digits of a combined datetime are eliminated",
			numbers:     []intent.Entity{number("8", "8"), number("4", "4")},
			dateTimeEnt: dt(intent.KindDateTime, "tomorrow at 8pm", "2024-05-03 20:00"),
			want:        4,
		},
		{
			name:    "several survivors, first wins",
			numbers: []intent.Entity{number("6", "6"), number("six", "6"), number("2", "2")},
			want:    6,
		},
		{
			name:    "empty pool means unknown",
			numbers: nil,
			want:    0,
		},
		{
			name:    "everything eliminated means unknown",
			numbers: []intent.Entity{number("1999", "1999")},
			dateEnt: marchFirst,
			want:    0,
		},
		{
			name:    "time digits are eliminated too",
			numbers: []intent.Entity{number("30", "30"), number("5", "5")},
			timeEnt: dt(intent.KindTime, "7:30 pm", "19:30"),
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PartySize(tt.numbers, tt.dateTimeEnt, tt.dateEnt, tt.timeEnt)
			assert.Equal(t, tt.want, got)
		})
	}
}
