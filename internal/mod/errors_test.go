package mod

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrExtractionFailure, "extract-audio", "ffmpeg", "decoder exited non-zero", cause)

	assert.ErrorIs(t, err, ErrExtractionFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "audio extraction failed: extract-audio: ffmpeg: decoder exited non-zero: exit status 1", err.Error())

	bare := Wrap(nil, " ", "", "", nil)
	assert.ErrorIs(t, bare, ErrUnclassified)
	assert.Equal(t, "unexpected error: stage failure", bare.Error())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{name: "missing dependency", err: Wrap(ErrMissingDependency, "extract-audio", "lookup", "", nil), expected: ErrMissingDependency},
		{name: "input not found", err: Wrap(ErrInputNotFound, "", "", "/tmp/x.mp4", nil), expected: ErrInputNotFound},
		{name: "extraction", err: Wrap(ErrExtractionFailure, "", "", "", nil), expected: ErrExtractionFailure},
		{name: "engine wrapped twice", err: fmt.Errorf("run: %w", Wrap(ErrEngineFailure, "transcribe", "whisper", "", nil)), expected: ErrEngineFailure},
		{name: "plain error", err: errors.New("boom"), expected: ErrUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestInstallHint(t *testing.T) {
	windows := InstallHint("ffmpeg", "windows")
	assert.Contains(t, windows, "https://www.gyan.dev/ffmpeg/builds/")
	assert.Contains(t, windows, "choco install ffmpeg")

	assert.Contains(t, InstallHint("ffmpeg", "darwin"), "brew install ffmpeg")

	linux := InstallHint("ffmpeg", "linux")
	assert.Contains(t, linux, "sudo apt install ffmpeg")
	assert.Contains(t, linux, "sudo yum install ffmpeg")

	assert.Contains(t, InstallHint("whisper", "linux"), "pip install -U openai-whisper")
	assert.NotEmpty(t, InstallHint("ffmpeg", ""))
}
