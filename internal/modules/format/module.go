// Package format renders attributed lines into the raw and prose transcripts
package format

import (
	"context"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Output file suffixes, appended to the sanitized video name
const (
	SuffixTranscription = "_transcription.txt"
	SuffixWithSpeakers  = "_transcription_with_speakers.txt"
)

// Header opens the plain transcription file
const Header = "--- Transcription with Timestamps ---\n\n"

// PreviewLines is the number of lines shown to the operator after a run
const PreviewLines = 10

// Module implements transcript formatting functionality
type Module struct{}

// New creates a new format module
func New() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "format"
}

// GetIO returns the module's I/O specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: mod.DataLines, Description: "Attributed lines in transcript order", Type: string(mod.InputTypeData)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: mod.DataDocuments, Description: "Rendered transcript files", Type: string(mod.OutputTypeData)},
		},
	}
}

// Validate checks the layout settings
func (m *Module) Validate(cfg *config.Config) error {
	if cfg.WrapWidth < 1 {
		return &utils.ValidationError{Field: "wrapWidth", Message: "must be at least 1"}
	}
	if cfg.ParagraphSize < 1 {
		return &utils.ValidationError{Field: "paragraphSize", Message: "must be at least 1"}
	}
	return nil
}

// Execute renders run.Lines into run.Documents. Attributed runs get the plain
// listing plus the speaker listing; other runs get the paragraph prose.
func (m *Module) Execute(ctx context.Context, run *mod.Run) (mod.ModuleResult, error) {
	cfg := run.Config

	var preview []string
	if run.Attributed {
		withSpeakers := RawLines(run.Lines, true)
		run.Documents = []mod.Document{
			{Suffix: SuffixTranscription, Content: Header + Raw(run.Lines, false)},
			{Suffix: SuffixWithSpeakers, Content: strings.Join(withSpeakers, "\n")},
		}
		preview = withSpeakers
	} else {
		opts := Options{Width: cfg.WrapWidth, ParagraphSize: cfg.ParagraphSize, Language: cfg.Language()}
		run.Documents = []mod.Document{
			{Suffix: SuffixTranscription, Content: Header + Prose(run.Lines, opts)},
		}
		preview = RawLines(run.Lines, false)
	}

	if len(preview) > PreviewLines {
		preview = preview[:PreviewLines]
	}
	run.Preview = preview

	paragraphs := 0
	if !run.Attributed {
		paragraphs = (len(run.Lines) + cfg.ParagraphSize - 1) / cfg.ParagraphSize
	}

	return mod.ModuleResult{
		Metadata: map[string]interface{}{
			"attributed": run.Attributed,
		},
		Statistics: map[string]interface{}{
			"documents":  len(run.Documents),
			"paragraphs": paragraphs,
		},
	}, nil
}
