package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// MockCommandExecutor is a mock implementation of utils.CommandExecutor
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) ExecuteCommand(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	called := m.Called(name, args)
	return called.Get(0).([]byte), called.Error(1)
}

func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	called := m.Called(file)
	return called.String(0), called.Error(1)
}

func newValidator(executor utils.CommandExecutor, env map[string]string) *Validator {
	v := New(executor)
	v.lookupEnv = func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
	return v
}

func TestRun_AllPresent(t *testing.T) {
	cfg := config.Default()
	executor := new(MockCommandExecutor)
	executor.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
	executor.On("LookPath", "whisper").Return("/usr/local/bin/whisper", nil)
	executor.On("LookPath", "python3").Return("/usr/bin/python3", nil)
	executor.On("ExecuteCommand", "/usr/bin/ffmpeg", []string{"-version"}).Return([]byte("ffmpeg version 6.1"), nil)
	executor.On("ExecuteCommand", "/usr/local/bin/whisper", []string{"--help"}).Return([]byte("usage: whisper [-h]"), nil)
	executor.On("ExecuteCommand", "/usr/bin/python3", []string{"--version"}).Return([]byte("Python 3.11.4\n"), nil)

	checks, err := newValidator(executor, map[string]string{config.EnvHuggingFaceToken: "hf_abc"}).Run(context.Background(), &cfg)
	require.NoError(t, err)
	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.Equal(t, StatusOK, c.Status, c.Name)
	}
	executor.AssertExpectations(t)
}

func TestRun_MissingFFmpeg(t *testing.T) {
	cfg := config.Default()
	cfg.EnableDiarization = false
	executor := new(MockCommandExecutor)
	executor.On("LookPath", "ffmpeg").Return("", errors.New("not found"))
	executor.On("LookPath", "whisper").Return("/usr/local/bin/whisper", nil)
	executor.On("LookPath", "python3").Return("", errors.New("not found"))
	executor.On("ExecuteCommand", "/usr/local/bin/whisper", []string{"--help"}).Return([]byte("usage: whisper"), nil)

	checks, err := newValidator(executor, nil).Run(context.Background(), &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, mod.ErrMissingDependency)
	assert.Contains(t, err.Error(), "ffmpeg")

	byName := make(map[string]Check)
	for _, c := range checks {
		byName[c.Name] = c
	}
	assert.Equal(t, StatusMissing, byName["ffmpeg"].Status)
	assert.Equal(t, StatusSkipped, byName["python"].Status)
	assert.Equal(t, StatusSkipped, byName[config.EnvHuggingFaceToken].Status)
}

func TestRun_MissingToken(t *testing.T) {
	cfg := config.Default()
	cfg.SegmentsFile = "segments.json"
	executor := new(MockCommandExecutor)
	executor.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
	executor.On("LookPath", "whisper").Return("", errors.New("not found"))
	executor.On("LookPath", "python3").Return("/usr/bin/python3", nil)
	executor.On("ExecuteCommand", "/usr/bin/ffmpeg", []string{"-version"}).Return([]byte("ffmpeg version 6.1"), nil)
	executor.On("ExecuteCommand", "/usr/bin/python3", []string{"--version"}).
		Return([]byte{}, &utils.CommandError{Name: "python3", Stderr: "Python 3.8.10", Err: errors.New("exit status 2")})

	checks, err := newValidator(executor, nil).Run(context.Background(), &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, mod.ErrMissingDependency)
	assert.Contains(t, err.Error(), config.EnvHuggingFaceToken)
	assert.NotContains(t, err.Error(), "whisper")

	assert.Equal(t, StatusSkipped, checks[1].Status)
	assert.Equal(t, StatusOK, checks[2].Status)
	assert.Equal(t, StatusMissing, checks[3].Status)
}

func TestRun_InvalidVersionOutput(t *testing.T) {
	cfg := config.Default()
	cfg.EnableDiarization = false
	executor := new(MockCommandExecutor)
	executor.On("LookPath", "ffmpeg").Return("/opt/ffmpeg", nil)
	executor.On("LookPath", "whisper").Return("/usr/local/bin/whisper", nil)
	executor.On("LookPath", "python3").Return("", errors.New("not found"))
	executor.On("ExecuteCommand", "/opt/ffmpeg", []string{"-version"}).Return([]byte("something else"), nil)
	executor.On("ExecuteCommand", "/usr/local/bin/whisper", []string{"--help"}).Return([]byte("Usage: whisper"), nil)

	checks, err := newValidator(executor, nil).Run(context.Background(), &cfg)
	require.Error(t, err)
	assert.Equal(t, StatusInvalid, checks[0].Status)
}

func TestTable(t *testing.T) {
	out := Table([]Check{
		{Name: "ffmpeg", Required: true, Status: StatusOK, Detail: "/usr/bin/ffmpeg"},
		{Name: "python", Status: StatusSkipped},
	})
	assert.Contains(t, out, "ffmpeg")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "optional")
}
