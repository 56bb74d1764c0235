package diarize

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Source produces speaker turns for an audio file, ordered by start time
type Source interface {
	Diarize(ctx context.Context, audioPath string) ([]transcript.SpeakerTurn, error)
}

// scriptName is the helper file written into the run's scratch directory
const scriptName = "diarize.py"

// diarizeScript runs a pyannote pipeline and prints one RTTM line per turn,
// in the pipeline's itertracks order.
const diarizeScript = `#!/usr/bin/env python3
import argparse
import os
import sys


def main():
    parser = argparse.ArgumentParser()
    parser.add_argument("--audio", required=True)
    parser.add_argument("--model", required=True)
    parser.add_argument("--num-speakers", type=int, default=0)
    args = parser.parse_args()

    try:
        from pyannote.audio import Pipeline
    except ImportError as exc:
        print(f"pyannote.audio is not installed: {exc}", file=sys.stderr)
        return 2

    token = os.environ.get("HUGGINGFACE_TOKEN") or None
    pipeline = Pipeline.from_pretrained(args.model, use_auth_token=token)
    if pipeline is None:
        print("could not load " + args.model + "; check the token and accept the model terms on huggingface.co", file=sys.stderr)
        return 3

    kwargs = {}
    if args.num_speakers > 0:
        kwargs["num_speakers"] = args.num_speakers
    diarization = pipeline(args.audio, **kwargs)

    for turn, _, speaker in diarization.itertracks(yield_label=True):
        print(f"SPEAKER audio 1 {turn.start:.3f} {turn.end - turn.start:.3f} <NA> <NA> {speaker} <NA> <NA>")
    return 0


if __name__ == "__main__":
    sys.exit(main())
`

// Pyannote runs the embedded helper script with the configured python interpreter
type Pyannote struct {
	executor utils.CommandExecutor
	python   string
	model    string
	speakers int
	token    string
	workDir  string
}

// NewPyannote creates a pyannote source that writes its helper into workDir
func NewPyannote(executor utils.CommandExecutor, cfg *config.Config, workDir string) *Pyannote {
	return &Pyannote{
		executor: executor,
		python:   cfg.PythonBinary,
		model:    cfg.DiarizationModel,
		speakers: cfg.ExpectedSpeakerCount,
		token:    cfg.HuggingFaceToken,
		workDir:  workDir,
	}
}

// Args returns the interpreter arguments for audioPath
func (p *Pyannote) Args(audioPath string) []string {
	return []string{
		filepath.Join(p.workDir, scriptName),
		"--audio", audioPath,
		"--model", p.model,
		"--num-speakers", strconv.Itoa(p.speakers),
	}
}

// Diarize implements Source. The token travels in the environment, never in argv.
func (p *Pyannote) Diarize(ctx context.Context, audioPath string) ([]transcript.SpeakerTurn, error) {
	if err := utils.WriteTextFile(filepath.Join(p.workDir, scriptName), diarizeScript); err != nil {
		return nil, mod.Wrap(mod.ErrEngineFailure, "diarize", "write helper", "", err)
	}

	utils.LogVerbose("Running %s with %d expected speakers", p.model, p.speakers)
	env := []string{config.EnvHuggingFaceToken + "=" + p.token}
	out, err := p.executor.ExecuteCommand(ctx, p.python, p.Args(audioPath), env)
	if err != nil {
		return nil, mod.Wrap(mod.ErrEngineFailure, "diarize", p.model, engineMessage(err), err)
	}

	turns, err := ParseRTTM(bytes.NewReader(out))
	if err != nil {
		return nil, mod.Wrap(mod.ErrEngineFailure, "diarize", "parse output", "", err)
	}
	return turns, nil
}

// RTTMFile reads turns from an existing RTTM file
type RTTMFile struct {
	Path string
}

// Diarize implements Source; the audio path is ignored
func (r RTTMFile) Diarize(ctx context.Context, audioPath string) ([]transcript.SpeakerTurn, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, mod.Wrap(mod.ErrInputNotFound, "diarize", "turns file", r.Path, err)
		}
		return nil, mod.Wrap(mod.ErrEngineFailure, "diarize", "turns file", r.Path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			utils.LogWarning("Failed to close turns file: %v", err)
		}
	}()

	turns, err := ParseRTTM(f)
	if err != nil {
		return nil, mod.Wrap(mod.ErrEngineFailure, "diarize", "turns file", r.Path, err)
	}
	utils.LogVerbose("Loaded %d speaker turns from %s", len(turns), r.Path)
	return turns, nil
}

// ParseRTTM reads SPEAKER records (type, file, channel, onset, duration,
// ortho, stype, name, ...) and returns turns sorted by start. Blank lines,
// comments and other record types are skipped.
func ParseRTTM(r io.Reader) ([]transcript.SpeakerTurn, error) {
	turns := make([]transcript.SpeakerTurn, 0)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != "SPEAKER" {
			continue
		}
		if len(fields) < 8 {
			return nil, fmt.Errorf("rttm line %d: expected at least 8 fields, got %d", lineNo, len(fields))
		}
		onset, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("rttm line %d: onset: %w", lineNo, err)
		}
		duration, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("rttm line %d: duration: %w", lineNo, err)
		}
		if onset < 0 || duration < 0 {
			return nil, fmt.Errorf("rttm line %d: negative onset or duration", lineNo)
		}
		turns = append(turns, transcript.SpeakerTurn{
			TimeInterval: transcript.TimeInterval{Start: onset, End: onset + duration},
			Speaker:      fields[7],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rttm: %w", err)
	}
	transcript.SortByStart(turns)
	return turns, nil
}

func engineMessage(err error) string {
	var cmdErr *utils.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return cmdErr.Stderr
	}
	return "diarization helper exited with an error"
}
