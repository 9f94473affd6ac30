package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
)

func dt(kind, text string, values ...string) *intent.Entity {
	return &intent.Entity{Kind: kind, Text: text, ResolvedValues: values}
}

func TestDateTime_CombinedEntityLastValueWins(t *testing.T) {
	// Two candidate resolutions; the earlier one must be ignored entirely.
	combined := dt(intent.KindDateTime, "next friday at 2pm",
		"2024-02-23 14:00", "2024-03-01 14:00")
	// Separate entities that would resolve differently; ignored too.
	date := dt(intent.KindDate, "monday", "2024-03-04")
	tm := dt(intent.KindTime, "9am", "09:00")

	got, err := DateTime(combined, date, tm)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local), got)
}

func TestDateTime_DatePlusTimeConcatenation(t *testing.T) {
	date := dt(intent.KindDate, "march first", "2024-03-01")
	tm := dt(intent.KindTime, "2pm", "14:00")

	got, err := DateTime(nil, date, tm)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local), got)
}

func TestDateTime_DateOnly(t *testing.T) {
	date := dt(intent.KindDate, "march first", "2024-03-01")

	got, err := DateTime(nil, date, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), got)
}

func TestDateTime_TimeOnlyAnchorsToToday(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2024, 3, 1, 8, 30, 0, 0, time.Local) }
	defer func() { timeNow = restore }()

	tm := dt(intent.KindTime, "2pm", "14:00")

	got, err := DateTime(nil, nil, tm)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local), got)
}

func TestDateTime_AbsentIsExplicit(t *testing.T) {
	_, err := DateTime(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoDateTime)
}

func TestDateTime_UnparseableIsDistinctFromAbsent(t *testing.T) {
	date := dt(intent.KindDate, "someday", "not a date")

	_, err := DateTime(nil, date, nil)
	assert.ErrorIs(t, err, ErrUnparseableDateTime)
	assert.NotErrorIs(t, err, ErrNoDateTime)
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		name           string
		entity         *intent.Entity
		defaultMinutes int
		want           int
	}{
		{
			name:           "one hour in seconds",
			entity:         dt(intent.KindDuration, "1 hour", "3600"),
			defaultMinutes: 60,
			want:           60,
		},
		{
			name:           "last resolution wins",
			entity:         dt(intent.KindDuration, "90 minutes", "3600", "5400"),
			defaultMinutes: 60,
			want:           90,
		},
		{
			name:           "absent uses creation default",
			entity:         nil,
			defaultMinutes: 60,
			want:           60,
		},
		{
			name:           "absent uses availability default",
			entity:         nil,
			defaultMinutes: 0,
			want:           0,
		},
		{
			name:           "unparseable falls back to default",
			entity:         dt(intent.KindDuration, "a while", "a while"),
			defaultMinutes: 60,
			want:           60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DurationMinutes(tt.entity, tt.defaultMinutes))
		})
	}
}
