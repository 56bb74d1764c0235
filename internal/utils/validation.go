package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecLookPath allows us to mock exec.LookPath in tests
var ExecLookPath = exec.LookPath

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateMediaFile checks that the input exists and is a regular file
func ValidateMediaFile(mediaFile string) error {
	if mediaFile == "" {
		return &ValidationError{
			Field:   "input",
			Message: "media file path is required",
		}
	}

	info, err := os.Stat(mediaFile)
	if err != nil {
		return &ValidationError{
			Field:   "input",
			Message: fmt.Sprintf("media file does not exist: %s", mediaFile),
			Err:     err,
		}
	}
	if info.IsDir() {
		return &ValidationError{
			Field:   "input",
			Message: fmt.Sprintf("input is a directory: %s", mediaFile),
		}
	}

	return nil
}

// ValidateOutputPath validates an output path and creates it if needed
func ValidateOutputPath(output string) error {
	if output == "" {
		return &ValidationError{
			Field:   "output",
			Message: "output path is required",
		}
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return &ValidationError{
			Field:   "output",
			Message: "failed to create output directory",
			Err:     err,
		}
	}

	return nil
}

// ValidateFileExtension checks if a file has one of the allowed extensions
func ValidateFileExtension(filePath string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			return nil
		}
	}
	return &ValidationError{
		Field:   "extension",
		Message: fmt.Sprintf("file extension %s not allowed. Allowed extensions: %v", ext, allowedExts),
	}
}
