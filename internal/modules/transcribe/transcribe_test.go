package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/transcript"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// MockCommandExecutor is a mock implementation of CommandExecutor
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) ExecuteCommand(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	// Call the mock with just the name and args
	ret := m.Called(name, args)
	return ret.Get(0).([]byte), ret.Error(1)
}

func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	ret := m.Called(file)
	return ret.String(0), ret.Error(1)
}

const whisperJSON = `{
  "text": " hello world",
  "language": "it",
  "segments": [
    {"id": 1, "start": 2.0, "end": 4.0, "text": " world", "tokens": [1, 2]},
    {"id": 0, "start": 0.0, "end": 2.0, "text": " hello", "tokens": [3]}
  ]
}`

func newRun(t *testing.T) *mod.Run {
	t.Helper()
	cfg := config.Default()
	scratch := t.TempDir()
	return &mod.Run{Config: &cfg, ScratchDir: scratch, AudioPath: filepath.Join(scratch, "audio.wav")}
}

func TestModule_Name(t *testing.T) {
	assert.Equal(t, "transcribe", New().Name())
}

func TestParseSegments(t *testing.T) {
	segments, err := ParseSegments([]byte(whisperJSON))
	require.NoError(t, err)

	require.Len(t, segments, 2)
	assert.Equal(t, transcript.Segment{TimeInterval: transcript.TimeInterval{Start: 0, End: 2}, Text: " hello"}, segments[0])
	assert.Equal(t, 2.0, segments[1].Start)

	segments, err = ParseSegments([]byte(`{"segments": [{"start": 5, "end": 3, "text": "x"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 5.0, segments[0].End, "end is raised to start")

	segments, err = ParseSegments([]byte(`{"segments": []}`))
	require.NoError(t, err)
	assert.Empty(t, segments)

	_, err = ParseSegments([]byte("not json"))
	assert.Error(t, err)
}

func TestWhisperCLI_Args(t *testing.T) {
	cfg := config.Default()
	w := NewWhisperCLI(nil, &cfg, "/tmp/run")

	assert.Equal(t, []string{
		"/tmp/run/audio.wav",
		"--model", "turbo",
		"--language", "it",
		"--task", "transcribe",
		"--fp16", "False",
		"--output_format", "json",
		"--output_dir", "/tmp/run",
		"--verbose", "False",
	}, w.Args("/tmp/run/audio.wav"))
}

func TestModule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		lookErr error
		wantErr error
	}{
		{name: "whisper installed"},
		{name: "whisper missing", lookErr: errors.New("not found"), wantErr: mod.ErrMissingDependency},
		{name: "segments file missing", mutate: func(c *config.Config) { c.SegmentsFile = "/nonexistent/segments.json" }, wantErr: mod.ErrInputNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			executor := new(MockCommandExecutor)
			executor.On("LookPath", "whisper").Return("/usr/local/bin/whisper", tt.lookErr).Maybe()

			err := NewWithExecutor(executor).Validate(&cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModule_Execute_Whisper(t *testing.T) {
	run := newRun(t)

	executor := new(MockCommandExecutor)
	w := NewWhisperCLI(executor, run.Config, run.ScratchDir)
	executor.On("ExecuteCommand", "whisper", w.Args(run.AudioPath)).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(filepath.Join(run.ScratchDir, "audio.json"), []byte(whisperJSON), 0644))
		}).
		Return([]byte{}, nil)

	result, err := NewWithExecutor(executor).Execute(context.Background(), run)
	require.NoError(t, err)

	require.Len(t, run.Segments, 2)
	assert.Equal(t, " hello", run.Segments[0].Text)
	assert.Equal(t, 2, result.Statistics["segments"])
	executor.AssertExpectations(t)
}

func TestModule_Execute_EngineFailure(t *testing.T) {
	run := newRun(t)

	executor := new(MockCommandExecutor)
	executor.On("ExecuteCommand", "whisper", mock.Anything).
		Return([]byte{}, &utils.CommandError{Name: "whisper", Stderr: "RuntimeError: CUDA out of memory", Err: errors.New("exit status 1")})

	_, err := NewWithExecutor(executor).Execute(context.Background(), run)
	require.Error(t, err)
	assert.ErrorIs(t, err, mod.ErrEngineFailure)
	assert.Contains(t, err.Error(), "CUDA out of memory")
	assert.Nil(t, run.Segments)
}

func TestModule_Execute_MissingOutput(t *testing.T) {
	run := newRun(t)

	executor := new(MockCommandExecutor)
	executor.On("ExecuteCommand", "whisper", mock.Anything).Return([]byte{}, nil)

	_, err := NewWithExecutor(executor).Execute(context.Background(), run)
	assert.ErrorIs(t, err, mod.ErrEngineFailure)
}

func TestModule_Execute_SegmentsFile(t *testing.T) {
	run := newRun(t)
	path := filepath.Join(t.TempDir(), "previous.json")
	require.NoError(t, os.WriteFile(path, []byte(whisperJSON), 0644))
	run.Config.SegmentsFile = path

	executor := new(MockCommandExecutor)
	m := NewWithExecutor(executor)
	require.NoError(t, m.Validate(run.Config))

	_, err := m.Execute(context.Background(), run)
	require.NoError(t, err)
	assert.Len(t, run.Segments, 2)
	executor.AssertNotCalled(t, "ExecuteCommand", mock.Anything, mock.Anything)
}

type staticSource []transcript.Segment

func (s staticSource) Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	return s, nil
}

func TestNewWithSource(t *testing.T) {
	run := newRun(t)
	m := NewWithSource(staticSource{{TimeInterval: transcript.TimeInterval{Start: 1, End: 2}, Text: "x"}})

	require.NoError(t, m.Validate(run.Config))
	_, err := m.Execute(context.Background(), run)
	require.NoError(t, err)
	assert.Len(t, run.Segments, 1)
}
