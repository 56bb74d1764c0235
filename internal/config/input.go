package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// InputConfig describes the media file of one run
type InputConfig struct {
	// InputPath is the normalized absolute path
	InputPath    string
	VideoName    string
	InputFileExt string
}

// NewInputConfig normalizes a raw path as typed or pasted by the operator.
// It does not check that the file exists.
func NewInputConfig(raw string) (*InputConfig, error) {
	path, err := NormalizeInputPath(raw)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return &InputConfig{
		InputPath:    path,
		VideoName:    strings.TrimSuffix(base, ext),
		InputFileExt: strings.ToLower(ext),
	}, nil
}

// NormalizeInputPath strips surrounding whitespace and quotes, expands "~/"
// and returns the cleaned absolute path.
func NormalizeInputPath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	for len(path) >= 2 && (path[0] == '"' || path[0] == '\'') && path[len(path)-1] == path[0] {
		path = strings.TrimSpace(path[1 : len(path)-1])
	}
	if path == "" {
		return "", &utils.ValidationError{Field: "input", Message: "input path is required"}
	}

	expanded, err := utils.ExpandHomeDir(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	return filepath.Clean(abs), nil
}
