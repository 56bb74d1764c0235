// Package output writes the rendered transcripts to the output directory
package output

import (
	"context"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// Module implements the output stage
type Module struct{}

// New creates a new output module
func New() *Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "output"
}

// Validate makes sure the output directory exists or can be created
func (m *Module) Validate(cfg *config.Config) error {
	return utils.ValidateOutputPath(cfg.OutputDir)
}

// Execute writes run.Documents and records the written paths in run.Artifacts
func (m *Module) Execute(ctx context.Context, run *mod.Run) (mod.ModuleResult, error) {
	safe := SanitizeName(run.VideoName)

	paths, err := NewWriter(run.Config.OutputDir).Write(ctx, safe, run.Documents)
	if err != nil {
		return mod.ModuleResult{}, mod.Wrap(mod.ErrUnclassified, m.Name(), "write", run.Config.OutputDir, err)
	}
	run.Artifacts = paths

	outputs := make(map[string]string, len(paths))
	for i, p := range paths {
		outputs[run.Documents[i].Suffix] = p
		utils.LogSuccess("Saved %s", p)
	}

	return mod.ModuleResult{
		Outputs: outputs,
		Metadata: map[string]interface{}{
			"name": safe,
		},
		Statistics: map[string]interface{}{
			"files": len(paths),
		},
	}, nil
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() mod.ModuleIO {
	return mod.ModuleIO{
		RequiredInputs: []mod.ModuleInput{
			{
				Name:        mod.DataDocuments,
				Description: "Rendered transcript files",
				Type:        string(mod.InputTypeData),
			},
		},
		ProducedOutputs: []mod.ModuleOutput{
			{
				Name:        mod.DataArtifacts,
				Description: "Transcript files in the output directory",
				Type:        string(mod.OutputTypeFile),
			},
		},
	}
}
