package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/modules/diarize"
	extractaudio "github.com/gnzdotmx/vidscribe/internal/modules/extract_audio"
	"github.com/gnzdotmx/vidscribe/internal/modules/format"
	"github.com/gnzdotmx/vidscribe/internal/modules/fuse"
	"github.com/gnzdotmx/vidscribe/internal/modules/output"
	"github.com/gnzdotmx/vidscribe/internal/modules/transcribe"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Stage names in execution order
const (
	StageExtract    = "extractaudio"
	StageTranscribe = "transcribe"
	StageDiarize    = "diarize"
	StageFuse       = "fuse"
	StageFormat     = "format"
	StageOutput     = "output"
)

// Pipeline runs the stages for one input file
type Pipeline struct {
	cfg       *config.Config
	executor  utils.CommandExecutor
	registry  *mod.ModuleRegistry
	overrides []mod.Module
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithExecutor sets the executor used by the stages that run external tools
func WithExecutor(executor utils.CommandExecutor) Option {
	return func(p *Pipeline) {
		p.executor = executor
	}
}

// WithModule replaces the stage with the same name
func WithModule(m mod.Module) Option {
	return func(p *Pipeline) {
		p.overrides = append(p.overrides, m)
	}
}

// New creates a pipeline for cfg
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		executor: &utils.RealCommandExecutor{},
		registry: mod.NewModuleRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}

	modules := []mod.Module{
		extractaudio.NewWithExecutor(p.executor),
		transcribe.NewWithExecutor(p.executor),
		diarize.NewWithExecutor(p.executor),
		fuse.NewModule(),
		format.New(),
		output.New(),
	}
	for _, m := range modules {
		if err := p.registry.Register(m); err != nil {
			return nil, fmt.Errorf("failed to register module: %w", err)
		}
	}
	for _, m := range p.overrides {
		if err := p.registry.Replace(m); err != nil {
			return nil, fmt.Errorf("failed to override module: %w", err)
		}
	}

	return p, nil
}

// Stages returns the stage names the pipeline will run
func (p *Pipeline) Stages() []string {
	stages := []string{StageExtract, StageTranscribe}
	if p.cfg.EnableDiarization {
		stages = append(stages, StageDiarize)
	}
	return append(stages, StageFuse, StageFormat, StageOutput)
}

func (p *Pipeline) modules() ([]mod.Module, error) {
	names := p.Stages()
	modules := make([]mod.Module, 0, len(names))
	for _, name := range names {
		m, err := p.registry.Get(name)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// Validate checks the configuration, the stage chain and every stage's
// dependencies before anything runs
func (p *Pipeline) Validate() error {
	if err := p.cfg.Validate(); err != nil {
		return mod.Wrap(nil, "workflow", "config", "", err)
	}

	modules, err := p.modules()
	if err != nil {
		return mod.Wrap(nil, "workflow", "modules", "", err)
	}
	if err := mod.ValidateChain(modules, mod.DataInput); err != nil {
		return mod.Wrap(nil, "workflow", "modules", "", err)
	}

	for _, m := range modules {
		if err := m.Validate(p.cfg); err != nil {
			if mod.Classify(err) != mod.ErrUnclassified {
				return err
			}
			return mod.Wrap(nil, m.Name(), "validate", "", err)
		}
	}
	return nil
}

// Run processes inputPath through every stage. The returned state is never nil
// once the input was accepted, so callers can report partial progress.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*mod.Run, *WorkflowState, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	input, err := config.NewInputConfig(inputPath)
	if err != nil {
		return nil, nil, mod.Wrap(mod.ErrInputNotFound, "workflow", "input", inputPath, err)
	}
	if err := utils.ValidateMediaFile(input.InputPath); err != nil {
		return nil, nil, mod.Wrap(mod.ErrInputNotFound, "workflow", "input", input.InputPath, err)
	}

	id := uuid.New().String()
	scratch := filepath.Join(p.cfg.ScratchRoot, id)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return nil, nil, mod.Wrap(nil, "workflow", "scratch", scratch, err)
	}
	defer utils.RemoveAllQuiet(scratch)

	run := &mod.Run{
		ID:         id,
		Config:     p.cfg,
		InputPath:  input.InputPath,
		VideoName:  input.VideoName,
		ScratchDir: scratch,
		Attributed: p.cfg.EnableDiarization,
	}

	stages := p.Stages()
	state := newState(id, input.InputPath, stages)
	utils.LogVerbose("Run %s: %s", id, input.InputPath)

	modules, err := p.modules()
	if err != nil {
		state.Finish(err)
		return run, state, mod.Wrap(nil, "workflow", "modules", "", err)
	}

	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			state.Finish(err)
			return run, state, mod.Wrap(nil, "workflow", "run", "interrupted", err)
		}

		name := m.Name()
		state.UpdateNodeStatus(name, NodeStatusRunning)
		state.AddEvent(name, "started", fmt.Sprintf("Started stage %s", name), nil)
		utils.LogDebug("Executing stage %s", name)

		result, err := m.Execute(ctx, run)
		if err != nil {
			state.UpdateNodeStatus(name, NodeStatusFailed)
			state.AddEvent(name, "failed", err.Error(), nil)
			state.Finish(err)
			return run, state, err
		}

		state.UpdateNodeResult(name, result.Outputs, result.Metadata, result.Statistics)
		state.UpdateNodeStatus(name, NodeStatusComplete)
		state.AddEvent(name, "completed", fmt.Sprintf("Completed stage %s", name), result.Statistics)
	}

	state.Finish(nil)
	return run, state, nil
}
