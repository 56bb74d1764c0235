// Package validator checks that the external tools and credentials a run
// needs are available
package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// ExternalTool represents an external command-line tool requirement
type ExternalTool struct {
	Name        string
	Binary      string
	Required    bool
	VersionArgs []string
	Validate    func(output string) bool
}

// Check status values
const (
	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusInvalid = "invalid"
	StatusSkipped = "not needed"
)

// Check is the outcome of one environment check
type Check struct {
	Name     string
	Required bool
	Status   string
	Detail   string
}

// Validator runs environment checks for a configuration
type Validator struct {
	executor  utils.CommandExecutor
	lookupEnv func(string) (string, bool)
}

// New creates a validator that probes tools through executor
func New(executor utils.CommandExecutor) *Validator {
	return &Validator{executor: executor, lookupEnv: os.LookupEnv}
}

// Tools lists the external tools cfg depends on
func Tools(cfg *config.Config) []ExternalTool {
	return []ExternalTool{
		{
			Name:        "ffmpeg",
			Binary:      cfg.FFmpegBinary,
			Required:    true,
			VersionArgs: []string{"-version"},
			Validate: func(output string) bool {
				return strings.Contains(output, "ffmpeg version")
			},
		},
		{
			Name:        "whisper",
			Binary:      cfg.WhisperBinary,
			Required:    cfg.SegmentsFile == "",
			VersionArgs: []string{"--help"},
			Validate: func(output string) bool {
				lower := strings.ToLower(output)
				return strings.Contains(lower, "usage") || strings.Contains(lower, "options")
			},
		},
		{
			Name:        "python",
			Binary:      cfg.PythonBinary,
			Required:    cfg.EnableDiarization && cfg.TurnsFile == "",
			VersionArgs: []string{"--version"},
			Validate: func(output string) bool {
				return strings.HasPrefix(strings.TrimSpace(output), "Python 3")
			},
		},
	}
}

// Run checks every tool and the diarization token. The returned error is
// tagged mod.ErrMissingDependency when a required check failed.
func (v *Validator) Run(ctx context.Context, cfg *config.Config) ([]Check, error) {
	var checks []Check
	var failed []string

	for _, tool := range Tools(cfg) {
		check := v.checkTool(ctx, tool)
		checks = append(checks, check)
		if check.Required && check.Status != StatusOK {
			failed = append(failed, tool.Name)
		}
	}

	token := v.checkToken(cfg)
	checks = append(checks, token)
	if token.Required && token.Status != StatusOK {
		failed = append(failed, config.EnvHuggingFaceToken)
	}

	if len(failed) > 0 {
		return checks, mod.Wrap(mod.ErrMissingDependency, "validate", "environment", strings.Join(failed, ", "), nil)
	}
	return checks, nil
}

func (v *Validator) checkTool(ctx context.Context, tool ExternalTool) Check {
	check := Check{Name: tool.Name, Required: tool.Required}

	path, err := v.executor.LookPath(tool.Binary)
	if err != nil {
		check.Status = StatusMissing
		if !tool.Required {
			check.Status = StatusSkipped
		}
		check.Detail = fmt.Sprintf("%s not found in PATH", tool.Binary)
		utils.LogVerbose("Tool %s not found: %v", tool.Binary, err)
		return check
	}

	// a probe that exits non-zero may still identify itself on stderr
	output, err := v.executor.ExecuteCommand(ctx, path, tool.VersionArgs, nil)
	text := string(output)
	var cmdErr *utils.CommandError
	if err != nil && errors.As(err, &cmdErr) {
		text += cmdErr.Stderr
	}
	if !tool.Validate(text) {
		check.Status = StatusInvalid
		check.Detail = fmt.Sprintf("unexpected output from %s", path)
		return check
	}

	check.Status = StatusOK
	check.Detail = path
	utils.LogVerbose("%s found at %s", tool.Name, path)
	return check
}

func (v *Validator) checkToken(cfg *config.Config) Check {
	check := Check{
		Name:     config.EnvHuggingFaceToken,
		Required: cfg.EnableDiarization && cfg.TurnsFile == "",
	}

	token := cfg.HuggingFaceToken
	if token == "" {
		token, _ = v.lookupEnv(config.EnvHuggingFaceToken)
	}
	switch {
	case strings.TrimSpace(token) != "":
		check.Status = StatusOK
		check.Detail = "set"
	case check.Required:
		check.Status = StatusMissing
		check.Detail = "required for speaker diarization"
	default:
		check.Status = StatusSkipped
	}
	return check
}

// Table renders checks for the validate command
func Table(checks []Check) string {
	rows := make([][]string, 0, len(checks))
	for _, c := range checks {
		required := "optional"
		if c.Required {
			required = "required"
		}
		rows = append(rows, []string{c.Name, required, c.Status, c.Detail})
	}
	return utils.RenderTable([]string{"Check", "Need", "Status", "Detail"}, rows)
}
