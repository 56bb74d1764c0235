package mod

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Failure classes surfaced to the operator. Every stage error is tagged with one.
var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrInputNotFound     = errors.New("input not found")
	ErrExtractionFailure = errors.New("audio extraction failed")
	ErrEngineFailure     = errors.New("engine failure")
	ErrUnclassified      = errors.New("unexpected error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUnclassified
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps any error to one of the sentinel classes
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingDependency):
		return ErrMissingDependency
	case errors.Is(err, ErrInputNotFound):
		return ErrInputNotFound
	case errors.Is(err, ErrExtractionFailure):
		return ErrExtractionFailure
	case errors.Is(err, ErrEngineFailure):
		return ErrEngineFailure
	default:
		return ErrUnclassified
	}
}

// InstallHint returns install guidance for a command on the given GOOS.
// An empty goos means the running platform.
func InstallHint(command, goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s is not installed or not found in system PATH\n\nTo install %s:\n", command, command)
	if command == "whisper" {
		b.WriteString("pip install -U openai-whisper")
		return b.String()
	}
	switch goos {
	case "windows":
		if command == "ffmpeg" {
			b.WriteString("1. Download ffmpeg from https://www.gyan.dev/ffmpeg/builds/\n")
			b.WriteString("2. Extract the archive\n")
			b.WriteString("3. Add the bin folder to your system PATH\n")
			b.WriteString("\nOr install using chocolatey:\n")
		}
		fmt.Fprintf(&b, "choco install %s", command)
	case "darwin":
		b.WriteString("Install using homebrew:\n")
		fmt.Fprintf(&b, "brew install %s", command)
	default:
		b.WriteString("Install using your package manager:\n")
		fmt.Fprintf(&b, "sudo apt install %s  # for Ubuntu/Debian\n", command)
		fmt.Fprintf(&b, "sudo yum install %s  # for CentOS/RHEL", command)
	}
	return b.String()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
