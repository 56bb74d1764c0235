// Package fuse attributes recognized segments to diarized speaker turns
package fuse

import (
	"context"
	"io"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
	"github.com/gnzdotmx/vidscribe/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Module implements the fusion stage
type Module struct{}

// NewModule creates a new fuse module
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "fuse"
}

// GetIO returns the module's I/O specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{Name: mod.DataSegments, Description: "Recognized segments ordered by start", Type: string(mod.InputTypeData)},
		},
		OptionalInputs: []mod.ModuleInput{
			{Name: mod.DataTurns, Description: "Speaker turns ordered by start", Type: string(mod.InputTypeData)},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{Name: mod.DataLines, Description: "One attributed line per segment", Type: string(mod.OutputTypeData)},
		},
	}
}

// Validate checks the fusion strategy
func (m *Module) Validate(cfg *config.Config) error {
	_, err := config.ParseFusionStrategy(string(cfg.FusionStrategy))
	return err
}

// Execute fuses run.Segments with run.Turns into run.Lines
func (m *Module) Execute(ctx context.Context, run *mod.Run) (mod.ModuleResult, error) {
	fuser := New(run.Config.FusionStrategy)

	bar := newProgressBar(len(run.Segments))
	run.Lines = fuser.Fuse(run.Segments, run.Turns, func(done, total int) {
		if err := bar.Set(done); err != nil {
			utils.LogDebug("Progress bar update failed: %v", err)
		}
	})
	if err := bar.Finish(); err != nil {
		utils.LogDebug("Progress bar finish failed: %v", err)
	}

	unknown := 0
	speakers := make(map[string]struct{})
	for _, line := range run.Lines {
		if line.Speaker == transcript.UnknownSpeaker {
			unknown++
			continue
		}
		speakers[line.Speaker] = struct{}{}
	}
	if run.Attributed && unknown > 0 {
		utils.LogVerbose("%d of %d segments matched no speaker turn", unknown, len(run.Lines))
	}

	return mod.ModuleResult{
		Metadata: map[string]interface{}{
			"strategy": string(run.Config.FusionStrategy),
		},
		Statistics: map[string]interface{}{
			"lines":    len(run.Lines),
			"unknown":  unknown,
			"speakers": len(speakers),
		},
	}, nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	var w io.Writer = utils.Stdout()
	if utils.CurrentLogLevel == utils.LevelQuiet {
		w = io.Discard
	}
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("mapping speakers"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
