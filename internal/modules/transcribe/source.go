package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Source produces recognized segments for an audio file, ordered by start time
type Source interface {
	Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error)
}

// whisperOutput is the subset of the whisper JSON output we read
type whisperOutput struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// WhisperCLI runs the whisper command line tool and reads its JSON output
type WhisperCLI struct {
	executor  utils.CommandExecutor
	binary    string
	model     config.ModelTier
	language  string
	outputDir string
}

// NewWhisperCLI creates a whisper source writing its JSON into outputDir
func NewWhisperCLI(executor utils.CommandExecutor, cfg *config.Config, outputDir string) *WhisperCLI {
	return &WhisperCLI{
		executor:  executor,
		binary:    cfg.WhisperBinary,
		model:     cfg.ModelTier,
		language:  cfg.PrimaryLanguage,
		outputDir: outputDir,
	}
}

// Args returns the whisper CLI arguments for audioPath
func (w *WhisperCLI) Args(audioPath string) []string {
	return []string{
		audioPath,
		"--model", string(w.model),
		"--language", w.language,
		"--task", "transcribe",
		"--fp16", "False",
		"--output_format", "json",
		"--output_dir", w.outputDir,
		"--verbose", "False",
	}
}

// Transcribe implements Source
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	utils.LogVerbose("Running %s with model %s (language %s)", w.binary, w.model, w.language)
	if _, err := w.executor.ExecuteCommand(ctx, w.binary, w.Args(audioPath), nil); err != nil {
		return nil, mod.Wrap(mod.ErrEngineFailure, "transcribe", w.binary, engineMessage(err), err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(w.outputDir, base+".json")
	segments, err := ReadSegmentsFile(jsonPath)
	if err != nil {
		return nil, mod.Wrap(mod.ErrEngineFailure, "transcribe", "read output", jsonPath, err)
	}
	return segments, nil
}

// SegmentsFile reads segments from a previously produced whisper JSON file
type SegmentsFile struct {
	Path string
}

// Transcribe implements Source; the audio path is ignored
func (s SegmentsFile) Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	segments, err := ReadSegmentsFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, mod.Wrap(mod.ErrInputNotFound, "transcribe", "segments file", s.Path, err)
		}
		return nil, mod.Wrap(mod.ErrEngineFailure, "transcribe", "segments file", s.Path, err)
	}
	utils.LogVerbose("Loaded %d segments from %s", len(segments), s.Path)
	return segments, nil
}

// ReadSegmentsFile parses a whisper JSON file into segments sorted by start
func ReadSegmentsFile(path string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSegments(data)
}

// ParseSegments parses whisper JSON output into segments sorted by start
func ParseSegments(data []byte) ([]transcript.Segment, error) {
	var parsed whisperOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		if s.End < s.Start {
			s.End = s.Start
		}
		segments = append(segments, transcript.Segment{
			TimeInterval: transcript.TimeInterval{Start: max(s.Start, 0), End: max(s.End, 0)},
			Text:         s.Text,
		})
	}
	transcript.SortByStart(segments)
	return segments, nil
}

func engineMessage(err error) string {
	var cmdErr *utils.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return cmdErr.Stderr
	}
	return "engine exited with an error"
}
