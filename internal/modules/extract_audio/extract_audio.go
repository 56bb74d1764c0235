package extractaudio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-audio/wav"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Canonical scratch audio format
const (
	SampleRate = 44100
	Channels   = 2
	BitDepth   = 16

	// AudioFileName is the scratch file written inside the run directory
	AudioFileName = "audio.wav"
)

// Module implements the audio extraction functionality
type Module struct {
	executor utils.CommandExecutor
}

// AudioInfo describes a verified scratch WAV file
type AudioInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64 // seconds
}

// New creates a new extract module
func New() *Module {
	return &Module{executor: &utils.RealCommandExecutor{}}
}

// NewWithExecutor creates a module with a custom command executor (for testing)
func NewWithExecutor(executor utils.CommandExecutor) *Module {
	return &Module{executor: executor}
}

// Name returns the module name
func (m *Module) Name() string {
	return "extractaudio"
}

// Validate checks that the decoder is installed
func (m *Module) Validate(cfg *config.Config) error {
	if _, err := m.executor.LookPath(cfg.FFmpegBinary); err != nil {
		return mod.Wrap(mod.ErrMissingDependency, m.Name(), cfg.FFmpegBinary, mod.InstallHint(cfg.FFmpegBinary, ""), err)
	}
	return nil
}

// Execute decodes the audio track of run.InputPath into the run's scratch directory
func (m *Module) Execute(ctx context.Context, run *mod.Run) (mod.ModuleResult, error) {
	if err := utils.ValidateMediaFile(run.InputPath); err != nil {
		return mod.ModuleResult{}, mod.Wrap(mod.ErrInputNotFound, m.Name(), "stat", run.InputPath, err)
	}

	if err := m.Validate(run.Config); err != nil {
		return mod.ModuleResult{}, err
	}

	audioPath := filepath.Join(run.ScratchDir, AudioFileName)
	utils.LogVerbose("Extracting audio from %s to %s", run.InputPath, audioPath)

	if _, err := m.executor.ExecuteCommand(ctx, run.Config.FFmpegBinary, BuildArgs(run.InputPath, audioPath), nil); err != nil {
		return mod.ModuleResult{}, mod.Wrap(mod.ErrExtractionFailure, m.Name(), run.Config.FFmpegBinary, diagnostics(err), err)
	}

	info, err := InspectWAV(audioPath)
	if err != nil {
		return mod.ModuleResult{}, mod.Wrap(mod.ErrExtractionFailure, m.Name(), "verify", audioPath, err)
	}

	run.AudioPath = audioPath
	run.AudioDuration = info.Duration

	utils.LogSuccess("Extracted %.1fs of audio", info.Duration)
	return mod.ModuleResult{
		Outputs: map[string]string{
			mod.DataAudio: audioPath,
		},
		Statistics: map[string]interface{}{
			"durationSeconds": info.Duration,
			"sampleRate":      info.SampleRate,
			"channels":        info.Channels,
		},
	}, nil
}

// BuildArgs returns the decoder arguments: no video, 16-bit little-endian PCM,
// 44.1 kHz, stereo, overwriting the output.
func BuildArgs(input, output string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-y",
		output,
	}
}

// InspectWAV opens path and checks it is a canonical PCM WAV file
func InspectWAV(path string) (AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return AudioInfo{}, fmt.Errorf("open audio: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			utils.LogWarning("Failed to close audio file: %v", err)
		}
	}()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return AudioInfo{}, errors.New("decoder output is not a valid WAV file")
	}

	info := AudioInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if info.BitDepth != BitDepth || info.SampleRate != SampleRate || info.Channels != Channels {
		return info, fmt.Errorf("unexpected audio format: %d Hz, %d channels, %d bit", info.SampleRate, info.Channels, info.BitDepth)
	}

	duration, err := dec.Duration()
	if err != nil {
		return info, fmt.Errorf("read audio duration: %w", err)
	}
	info.Duration = duration.Seconds()
	return info, nil
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{
				Name:        mod.DataInput,
				Description: "Media file whose audio track is transcribed",
				Type:        string(mod.InputTypeFile),
			},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{
				Name:        mod.DataAudio,
				Description: "Scratch WAV file, 16-bit PCM, 44.1 kHz, stereo",
				Type:        string(mod.OutputTypeFile),
			},
		},
	}
}

func diagnostics(err error) string {
	var cmdErr *utils.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return cmdErr.Stderr
	}
	return "decoder exited with an error"
}
