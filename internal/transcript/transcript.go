// Package transcript holds the interval types shared by the recognition,
// diarization, fusion and formatting stages.
package transcript

import (
	"fmt"
	"sort"
)

// UnknownSpeaker labels a segment whose start falls outside every speaker turn
const UnknownSpeaker = "Unknown"

// TimeInterval is a closed span of the media timeline in seconds
type TimeInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Valid reports whether 0 <= Start <= End
func (t TimeInterval) Valid() bool {
	return t.Start >= 0 && t.Start <= t.End
}

// Contains reports whether sec lies inside the interval, bounds included
func (t TimeInterval) Contains(sec float64) bool {
	return t.Start <= sec && sec <= t.End
}

// Duration returns End - Start
func (t TimeInterval) Duration() float64 {
	return t.End - t.Start
}

// Overlap returns the length of the time shared by t and o, or 0
func (t TimeInterval) Overlap(o TimeInterval) float64 {
	start := max(t.Start, o.Start)
	end := min(t.End, o.End)
	if end <= start {
		return 0
	}
	return end - start
}

// Interval is the engine-agnostic (start, end, payload) view of a result
type Interval interface {
	Span() TimeInterval
	Payload() string
}

// Segment is one timestamped unit of recognized text
type Segment struct {
	TimeInterval
	Text string `json:"text"`
}

// Span returns the segment's interval
func (s Segment) Span() TimeInterval { return s.TimeInterval }

// Payload returns the recognized text
func (s Segment) Payload() string { return s.Text }

// SpeakerTurn is a timestamped interval attributed to one speaker
type SpeakerTurn struct {
	TimeInterval
	Speaker string `json:"speaker"`
}

// Span returns the turn's interval
func (t SpeakerTurn) Span() TimeInterval { return t.TimeInterval }

// Payload returns the speaker label
func (t SpeakerTurn) Payload() string { return t.Speaker }

// AttributedLine is a segment after fusion. It is never mutated after creation.
type AttributedLine struct {
	Timestamp string
	Speaker   string
	Text      string
}

// SortByStart orders intervals by start time, keeping the engine order for equal starts
func SortByStart[T Interval](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Span().Start < items[j].Span().Start
	})
}

// FormatTimestamp renders seconds as HH:MM:SS. Fractions are truncated and
// hours do not roll over into days.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	remainder := total % 3600
	minutes := remainder / 60
	secs := remainder % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
