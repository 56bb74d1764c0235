package transcribe

import (
	"context"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Module implements audio transcription functionality
type Module struct {
	cmdExecutor utils.CommandExecutor
	source      Source
}

// New creates a new transcribe module backed by the whisper CLI
func New() *Module {
	return &Module{
		cmdExecutor: &utils.RealCommandExecutor{},
	}
}

// NewWithExecutor creates a new transcribe module with a custom command executor
func NewWithExecutor(executor utils.CommandExecutor) *Module {
	return &Module{
		cmdExecutor: executor,
	}
}

// NewWithSource creates a module that always uses source
func NewWithSource(source Source) *Module {
	return &Module{source: source}
}

// Name returns the module name
func (m *Module) Name() string {
	return "transcribe"
}

// Validate checks that the recognition engine or the segments file is available
func (m *Module) Validate(cfg *config.Config) error {
	if m.source != nil {
		return nil
	}
	if cfg.SegmentsFile != "" {
		if !utils.FileExists(cfg.SegmentsFile) {
			return mod.Wrap(mod.ErrInputNotFound, m.Name(), "segments file", cfg.SegmentsFile, nil)
		}
		return nil
	}
	if _, err := config.ParseModelTier(string(cfg.ModelTier)); err != nil {
		return err
	}
	if _, err := m.cmdExecutor.LookPath(cfg.WhisperBinary); err != nil {
		return mod.Wrap(mod.ErrMissingDependency, m.Name(), cfg.WhisperBinary, mod.InstallHint(cfg.WhisperBinary, ""), err)
	}
	return nil
}

// Execute transcribes run.AudioPath into run.Segments
func (m *Module) Execute(ctx context.Context, run *mod.Run) (mod.ModuleResult, error) {
	source := m.sourceFor(run)

	segments, err := source.Transcribe(ctx, run.AudioPath)
	if err != nil {
		return mod.ModuleResult{}, err
	}
	run.Segments = segments

	utils.LogSuccess("Transcribed %d segments", len(segments))
	return mod.ModuleResult{
		Metadata: map[string]interface{}{
			"model":    string(run.Config.ModelTier),
			"language": run.Config.PrimaryLanguage,
		},
		Statistics: map[string]interface{}{
			"segments": len(segments),
		},
	}, nil
}

func (m *Module) sourceFor(run *mod.Run) Source {
	switch {
	case m.source != nil:
		return m.source
	case run.Config.SegmentsFile != "":
		return SegmentsFile{Path: run.Config.SegmentsFile}
	default:
		return NewWhisperCLI(m.cmdExecutor, run.Config, run.ScratchDir)
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
				Name:        mod.DataSegments,
				Description: "Recognized segments ordered by start",
				Type:        string(mod.OutputTypeData),
			},
		},
	}
}
