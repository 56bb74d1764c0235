package extractaudio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// MockCommandExecutor is a mock implementation of CommandExecutor
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) ExecuteCommand(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	ret := m.Called(name, args)
	return ret.Get(0).([]byte), ret.Error(1)
}

func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	ret := m.Called(file)
	return ret.String(0), ret.Error(1)
}

// writeTestWAV writes seconds of silence in the given format
func writeTestWAV(t *testing.T, path string, sampleRate, channels int, seconds float64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	frames := int(float64(sampleRate) * seconds)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func newRun(t *testing.T) (*mod.Run, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "My Video.mp4")
	require.NoError(t, os.WriteFile(input, []byte("dummy video content"), 0644))
	scratch := filepath.Join(dir, "scratch")
	require.NoError(t, os.MkdirAll(scratch, 0755))

	cfg := config.Default()
	return &mod.Run{Config: &cfg, InputPath: input, ScratchDir: scratch}, scratch
}

func TestModule_Name(t *testing.T) {
	assert.Equal(t, "extractaudio", New().Name())
}

func TestModule_GetIO(t *testing.T) {
	io := New().GetIO()

	require.Len(t, io.RequiredInputs, 1)
	assert.Equal(t, mod.DataInput, io.RequiredInputs[0].Name)
	require.Len(t, io.ProducedOutputs, 1)
	assert.Equal(t, mod.DataAudio, io.ProducedOutputs[0].Name)
	assert.NoError(t, mod.ValidateIO(io))
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("/in/video.mp4", "/tmp/run/audio.wav")

	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "/in/video.mp4",
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		"-y",
		"/tmp/run/audio.wav",
	}, args)
}

func TestModule_Validate(t *testing.T) {
	cfg := config.Default()

	t.Run("decoder present", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		executor.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)

		assert.NoError(t, NewWithExecutor(executor).Validate(&cfg))
		executor.AssertExpectations(t)
	})

	t.Run("decoder missing", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		executor.On("LookPath", "ffmpeg").Return("", errors.New("executable file not found in $PATH"))

		err := NewWithExecutor(executor).Validate(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, mod.ErrMissingDependency)
		assert.Contains(t, err.Error(), "To install ffmpeg")
	})
}

func TestModule_Execute(t *testing.T) {
	t.Run("extracts and verifies audio", func(t *testing.T) {
		run, scratch := newRun(t)
		audioPath := filepath.Join(scratch, AudioFileName)

		executor := new(MockCommandExecutor)
		executor.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
		executor.On("ExecuteCommand", "ffmpeg", BuildArgs(run.InputPath, audioPath)).
			Run(func(args mock.Arguments) {
				writeTestWAV(t, audioPath, SampleRate, Channels, 0.5)
			}).
			Return([]byte{}, nil)

		result, err := NewWithExecutor(executor).Execute(context.Background(), run)
		require.NoError(t, err)

		assert.Equal(t, audioPath, run.AudioPath)
		assert.Equal(t, audioPath, result.Outputs[mod.DataAudio])
		assert.InDelta(t, 0.5, run.AudioDuration, 0.01)
		executor.AssertExpectations(t)
	})

	t.Run("input missing", func(t *testing.T) {
		run, _ := newRun(t)
		run.InputPath = filepath.Join(t.TempDir(), "missing.mp4")

		executor := new(MockCommandExecutor)
		_, err := NewWithExecutor(executor).Execute(context.Background(), run)
		assert.ErrorIs(t, err, mod.ErrInputNotFound)
		executor.AssertNotCalled(t, "ExecuteCommand", mock.Anything, mock.Anything)
	})

	t.Run("decoder fails", func(t *testing.T) {
		run, _ := newRun(t)

		executor := new(MockCommandExecutor)
		executor.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
		executor.On("ExecuteCommand", "ffmpeg", mock.Anything).
			Return([]byte{}, &utils.CommandError{Name: "ffmpeg", Stderr: "moov atom not found", Err: errors.New("exit status 1")})

		_, err := NewWithExecutor(executor).Execute(context.Background(), run)
		require.Error(t, err)
		assert.ErrorIs(t, err, mod.ErrExtractionFailure)
		assert.Contains(t, err.Error(), "moov atom not found")
	})

	t.Run("decoder writes garbage", func(t *testing.T) {
		run, scratch := newRun(t)

		executor := new(MockCommandExecutor)
		executor.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
		executor.On("ExecuteCommand", "ffmpeg", mock.Anything).
			Run(func(args mock.Arguments) {
				require.NoError(t, os.WriteFile(filepath.Join(scratch, AudioFileName), []byte("not audio"), 0644))
			}).
			Return([]byte{}, nil)

		_, err := NewWithExecutor(executor).Execute(context.Background(), run)
		assert.ErrorIs(t, err, mod.ErrExtractionFailure)
	})
}

func TestInspectWAV(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.wav")
	writeTestWAV(t, good, SampleRate, Channels, 1)
	info, err := InspectWAV(good)
	require.NoError(t, err)
	assert.Equal(t, SampleRate, info.SampleRate)
	assert.Equal(t, Channels, info.Channels)
	assert.InDelta(t, 1.0, info.Duration, 0.01)

	mono := filepath.Join(dir, "mono.wav")
	writeTestWAV(t, mono, 16000, 1, 0.2)
	_, err = InspectWAV(mono)
	assert.ErrorContains(t, err, "unexpected audio format")

	_, err = InspectWAV(filepath.Join(dir, "absent.wav"))
	assert.Error(t, err)
}
