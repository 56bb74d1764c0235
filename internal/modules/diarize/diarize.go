// Package diarize produces speaker turns for the scratch audio
package diarize

import (
	"context"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Module implements the optional diarization stage
type Module struct {
	cmdExecutor utils.CommandExecutor
	source      Source
}

// New creates a diarization module backed by the pyannote helper
func New() *Module {
	return &Module{cmdExecutor: &utils.RealCommandExecutor{}}
}

// NewWithExecutor creates a module with a custom command executor (for testing)
func NewWithExecutor(executor utils.CommandExecutor) *Module {
	return &Module{cmdExecutor: executor}
}

// NewWithSource creates a module that always uses source
func NewWithSource(source Source) *Module {
	return &Module{source: source}
}

// Name returns the module name
func (m *Module) Name() string {
	return "diarize"
}

// Validate checks the interpreter and the Hugging Face token, or the turns file
func (m *Module) Validate(cfg *config.Config) error {
	if m.source != nil {
		return nil
	}
	if cfg.TurnsFile != "" {
		if !utils.FileExists(cfg.TurnsFile) {
			return mod.Wrap(mod.ErrInputNotFound, m.Name(), "turns file", cfg.TurnsFile, nil)
		}
		return nil
	}
	if cfg.ExpectedSpeakerCount < 1 {
		return &utils.ValidationError{Field: "expectedSpeakerCount", Message: "must be at least 1"}
	}
	if _, err := m.cmdExecutor.LookPath(cfg.PythonBinary); err != nil {
		return mod.Wrap(mod.ErrMissingDependency, m.Name(), cfg.PythonBinary, mod.InstallHint(cfg.PythonBinary, ""), err)
	}
	if strings.TrimSpace(cfg.HuggingFaceToken) == "" {
		return mod.Wrap(mod.ErrMissingDependency, m.Name(), "token",
			config.EnvHuggingFaceToken+" is not set; accept the terms of "+cfg.DiarizationModel+" on huggingface.co and export a read token", nil)
	}
	return nil
}

// Execute diarizes run.AudioPath into run.Turns
func (m *Module) Execute(ctx context.Context, run *mod.Run) (mod.ModuleResult, error) {
	turns, err := m.sourceFor(run).Diarize(ctx, run.AudioPath)
	if err != nil {
		return mod.ModuleResult{}, err
	}

	if len(turns) == 0 {
		if run.Config.FailOnEmptyDiarization {
			return mod.ModuleResult{}, mod.Wrap(mod.ErrEngineFailure, m.Name(), "", "no speaker turns detected", nil)
		}
		utils.LogWarning("No speaker turns detected; every line will be attributed to %s", transcript.UnknownSpeaker)
	}
	run.Turns = turns

	speakers := make(map[string]struct{})
	for _, t := range turns {
		speakers[t.Speaker] = struct{}{}
	}
	if len(turns) > 0 {
		utils.LogSuccess("Found %d speaker turns from %d speakers", len(turns), len(speakers))
	}
	if run.Config.ExpectedSpeakerCount > 0 && len(speakers) > 0 && len(speakers) != run.Config.ExpectedSpeakerCount {
		utils.LogVerbose("Expected %d speakers, engine reported %d", run.Config.ExpectedSpeakerCount, len(speakers))
	}

	return mod.ModuleResult{
		Metadata: map[string]interface{}{
			"model": run.Config.DiarizationModel,
		},
		Statistics: map[string]interface{}{
			"turns":    len(turns),
			"speakers": len(speakers),
		},
	}, nil
}

func (m *Module) sourceFor(run *mod.Run) Source {
	switch {
	case m.source != nil:
		return m.source
	case run.Config.TurnsFile != "":
		return RTTMFile{Path: run.Config.TurnsFile}
	default:
		return NewPyannote(m.cmdExecutor, run.Config, run.ScratchDir)
	}
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{
				Name:        mod.DataAudio,
				Description: "Scratch audio file",
				Type:        string(mod.InputTypeFile),
			},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{
				Name:        mod.DataTurns,
				Description: "Speaker turns ordered by start",
				Type:        string(mod.OutputTypeData),
			},
		},
	}
}
