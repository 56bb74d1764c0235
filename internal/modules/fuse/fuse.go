package fuse

import (
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
)

// ProgressFunc is called once per fused segment
type ProgressFunc func(done, total int)

// Fuser attributes every segment to at most one speaker turn.
// The result has the same length and order as segments.
type Fuser interface {
	Fuse(segments []transcript.Segment, turns []transcript.SpeakerTurn, progress ProgressFunc) []transcript.AttributedLine
}

// FirstMatch attributes a segment to the first turn, in turn order, whose
// closed interval contains the segment start. Overlapping turns resolve to
// whichever comes first.
type FirstMatch struct{}

// Fuse implements Fuser
func (FirstMatch) Fuse(segments []transcript.Segment, turns []transcript.SpeakerTurn, progress ProgressFunc) []transcript.AttributedLine {
	return fuseEach(segments, progress, func(seg transcript.Segment) string {
		return firstContaining(turns, seg.Start)
	})
}

// MaxOverlap attributes a segment to the turn sharing the most time with it,
// ties going to the earlier turn. Segments with no overlap fall back to FirstMatch.
type MaxOverlap struct{}

// Fuse implements Fuser
func (MaxOverlap) Fuse(segments []transcript.Segment, turns []transcript.SpeakerTurn, progress ProgressFunc) []transcript.AttributedLine {
	return fuseEach(segments, progress, func(seg transcript.Segment) string {
		best := -1
		bestOverlap := 0.0
		for i, turn := range turns {
			if o := turn.Overlap(seg.TimeInterval); o > bestOverlap {
				best, bestOverlap = i, o
			}
		}
		if best < 0 {
			return firstContaining(turns, seg.Start)
		}
		return turns[best].Speaker
	})
}

// New returns the fuser for a strategy, defaulting to FirstMatch
func New(strategy config.FusionStrategy) Fuser {
	if strategy == config.FusionMaxOverlap {
		return MaxOverlap{}
	}
	return FirstMatch{}
}

func firstContaining(turns []transcript.SpeakerTurn, t float64) string {
	for _, turn := range turns {
		if turn.Contains(t) {
			return turn.Speaker
		}
	}
	return transcript.UnknownSpeaker
}

func fuseEach(segments []transcript.Segment, progress ProgressFunc, speakerFor func(transcript.Segment) string) []transcript.AttributedLine {
	lines := make([]transcript.AttributedLine, 0, len(segments))
	for i, seg := range segments {
		lines = append(lines, transcript.AttributedLine{
			Timestamp: transcript.FormatTimestamp(seg.Start),
			Speaker:   speakerFor(seg),
			Text:      strings.TrimSpace(seg.Text),
		})
		if progress != nil {
			progress(i+1, len(segments))
		}
	}
	return lines
}
