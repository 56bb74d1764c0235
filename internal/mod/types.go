package mod

import (
	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
)

// Run data names used in ModuleIO declarations
const (
	DataInput     = "input"
	DataAudio     = "audio"
	DataSegments  = "segments"
	DataTurns     = "turns"
	DataLines     = "lines"
	DataDocuments = "documents"
	DataArtifacts = "artifacts"
)

// Document is one rendered output file before it is written
type Document struct {
	// Suffix is appended to the sanitized video name, e.g. "_transcription.txt"
	Suffix  string
	Content string
}

// Run is the state of one invocation, filled in stage by stage.
// It is owned by a single goroutine for the lifetime of the run.
type Run struct {
	ID     string
	Config *config.Config

	InputPath  string // normalized absolute path of the media file
	VideoName  string // base name without extension
	ScratchDir string // per-run scratch directory, removed on exit

	AudioPath     string
	AudioDuration float64 // seconds

	Segments []transcript.Segment
	Turns    []transcript.SpeakerTurn
	// Attributed is true when speaker attribution is rendered
	Attributed bool
	Lines      []transcript.AttributedLine

	Documents []Document
	// Preview holds the first lines shown to the operator after the run
	Preview   []string
	Artifacts []string
}
