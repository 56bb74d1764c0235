package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{name: "zero", seconds: 0, expected: "00:00:00"},
		{name: "truncates fraction", seconds: 3661.9, expected: "01:01:01"},
		{name: "whole hours and minutes", seconds: 7320, expected: "02:02:00"},
		{name: "just below a minute", seconds: 59.999, expected: "00:00:59"},
		{name: "no day rollover", seconds: 100 * 3600, expected: "100:00:00"},
		{name: "negative clamps to zero", seconds: -4, expected: "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimestamp(tt.seconds))
		})
	}
}

func TestTimeInterval(t *testing.T) {
	turn := TimeInterval{Start: 10, End: 20}

	assert.True(t, turn.Valid())
	assert.False(t, TimeInterval{Start: 5, End: 4}.Valid())
	assert.False(t, TimeInterval{Start: -1, End: 4}.Valid())

	assert.True(t, turn.Contains(10))
	assert.True(t, turn.Contains(15))
	assert.True(t, turn.Contains(20))
	assert.False(t, turn.Contains(25))
	assert.False(t, turn.Contains(9.99))

	assert.Equal(t, 10.0, turn.Duration())
	assert.Equal(t, 5.0, turn.Overlap(TimeInterval{Start: 15, End: 30}))
	assert.Equal(t, 0.0, turn.Overlap(TimeInterval{Start: 20, End: 30}))
	assert.Equal(t, 0.0, turn.Overlap(TimeInterval{Start: 40, End: 50}))
}

func TestSortByStart(t *testing.T) {
	turns := []SpeakerTurn{
		{TimeInterval: TimeInterval{Start: 5, End: 6}, Speaker: "B"},
		{TimeInterval: TimeInterval{Start: 1, End: 2}, Speaker: "A"},
		{TimeInterval: TimeInterval{Start: 5, End: 9}, Speaker: "C"},
	}

	SortByStart(turns)

	labels := make([]string, 0, len(turns))
	for _, turn := range turns {
		labels = append(labels, turn.Payload())
	}
	assert.Equal(t, []string{"A", "B", "C"}, labels)
}

func TestIntervalView(t *testing.T) {
	var items []Interval = []Interval{
		Segment{TimeInterval: TimeInterval{Start: 0, End: 2}, Text: "hello"},
		SpeakerTurn{TimeInterval: TimeInterval{Start: 0, End: 3}, Speaker: "SPEAKER_00"},
	}

	assert.Equal(t, "hello", items[0].Payload())
	assert.Equal(t, 2.0, items[0].Span().End)
	assert.Equal(t, "SPEAKER_00", items[1].Payload())
	assert.Equal(t, 3.0, items[1].Span().End)
}
