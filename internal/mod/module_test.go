package mod

import (
	"context"
	"testing"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModule struct {
	name string
	io   ModuleIO
}

func (s *stubModule) Name() string { return s.name }
func (s *stubModule) GetIO() ModuleIO { return s.io }
func (s *stubModule) Validate(cfg *config.Config) error { return nil }
func (s *stubModule) Execute(ctx context.Context, run *Run) (ModuleResult, error) {
	return ModuleResult{}, nil
}

func stub(name string, in []string, out []string) *stubModule {
	m := &stubModule{name: name}
	for _, n := range in {
		m.io.RequiredInputs = append(m.io.RequiredInputs, ModuleInput{Name: n, Type: string(InputTypeData)})
	}
	for _, n := range out {
		m.io.ProducedOutputs = append(m.io.ProducedOutputs, ModuleOutput{Name: n, Type: string(OutputTypeData)})
	}
	return m
}

func TestModuleRegistry(t *testing.T) {
	registry := NewModuleRegistry()

	require.NoError(t, registry.Register(stub("fuse", []string{DataSegments}, []string{DataLines})))
	assert.Error(t, registry.Register(stub("fuse", nil, nil)), "duplicate names are rejected")
	assert.Error(t, registry.Register(nil))
	assert.Error(t, registry.Register(stub("", nil, nil)))

	bad := stub("bad", nil, nil)
	bad.io.RequiredInputs = []ModuleInput{{Name: "x", Type: "directory"}}
	assert.Error(t, registry.Register(bad))

	m, err := registry.Get("fuse")
	require.NoError(t, err)
	assert.Equal(t, "fuse", m.Name())

	_, err = registry.Get("missing")
	assert.Error(t, err)
	_, err = registry.Get("")
	assert.Error(t, err)

	require.NoError(t, registry.Replace(stub("fuse", nil, []string{DataLines})))
	m, err = registry.Get("fuse")
	require.NoError(t, err)
	assert.Empty(t, m.GetIO().RequiredInputs)
	assert.Len(t, registry.ListModules(), 1)
}

func TestValidateChain(t *testing.T) {
	extract := stub("extract-audio", []string{DataInput}, []string{DataAudio})
	transcribe := stub("transcribe", []string{DataAudio}, []string{DataSegments})
	fuse := stub("fuse", []string{DataSegments}, []string{DataLines})

	assert.NoError(t, ValidateChain([]Module{extract, transcribe, fuse}, DataInput))

	err := ValidateChain([]Module{transcribe, extract}, DataInput)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcribe requires audio")
}
