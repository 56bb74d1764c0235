// Package mod provides the core module functionality for the transcription pipeline
package mod

import (
	"context"
	"fmt"
	"sync"

	"github.com/gnzdotmx/vidscribe/internal/config"
)

// Module defines the interface that every pipeline stage must implement
type Module interface {
	// Name returns the module's unique identifier
	Name() string

	// GetIO returns the run data the module consumes and produces
	GetIO() ModuleIO

	// Validate checks if the configuration is usable by this module
	Validate(cfg *config.Config) error

	// Execute runs the module against the shared run state
	Execute(ctx context.Context, run *Run) (ModuleResult, error)
}

// ModuleIO defines the expected inputs and outputs for a module
type ModuleIO struct {
	// Required run data produced by previous modules
	RequiredInputs []ModuleInput
	// Run data this module fills in for subsequent modules
	ProducedOutputs []ModuleOutput
	// Run data used when present
	OptionalInputs []ModuleInput
}

// ModuleInput defines an input requirement for a module
type ModuleInput struct {
	Name        string // Logical name of the input (e.g., "audio", "segments")
	Description string // Description of what this input is used for
	Type        string // Type of input (e.g., "file", "data")
}

// ModuleOutput defines an output produced by a module
type ModuleOutput struct {
	Name        string // Logical name of the output
	Description string // Description of what this output contains
	Type        string // Type of output (e.g., "file", "data")
}

// ModuleResult contains the results of a module execution
type ModuleResult struct {
	Outputs    map[string]string      // Map of output name to file path
	Metadata   map[string]interface{} // Additional metadata about the execution
	Statistics map[string]interface{} // Counts, durations and other statistics
}

// InputType defines the valid types of module inputs
type InputType string

const (
	InputTypeFile InputType = "file"
	InputTypeData InputType = "data"
)

// OutputType defines the valid types of module outputs
type OutputType string

const (
	OutputTypeFile OutputType = "file"
	OutputTypeData OutputType = "data"
)

// ModuleRegistry stores all available modules
type ModuleRegistry struct {
	modules map[string]Module
	sync.RWMutex
}

// NewModuleRegistry creates a new module registry
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		modules: make(map[string]Module),
	}
}

// ValidateIO validates a module's I/O specification
func ValidateIO(io ModuleIO) error {
	for i, input := range io.RequiredInputs {
		if input.Name == "" {
			return fmt.Errorf("required input %d has empty name", i)
		}
		if !isValidInputType(input.Type) {
			return fmt.Errorf("required input %s has invalid type: %q", input.Name, input.Type)
		}
	}

	for i, input := range io.OptionalInputs {
		if input.Name == "" {
			return fmt.Errorf("optional input %d has empty name", i)
		}
		if !isValidInputType(input.Type) {
			return fmt.Errorf("optional input %s has invalid type: %q", input.Name, input.Type)
		}
	}

	for i, output := range io.ProducedOutputs {
		if output.Name == "" {
			return fmt.Errorf("output %d has empty name", i)
		}
		if !isValidOutputType(output.Type) {
			return fmt.Errorf("output %s has invalid type: %q", output.Name, output.Type)
		}
	}

	return nil
}

func isValidInputType(t string) bool {
	switch InputType(t) {
	case InputTypeFile, InputTypeData:
		return true
	default:
		return false
	}
}

func isValidOutputType(t string) bool {
	switch OutputType(t) {
	case OutputTypeFile, OutputTypeData:
		return true
	default:
		return false
	}
}

// ValidateChain checks that every required input of every module is produced
// by an earlier module or is one of the seeds available before the first stage.
func ValidateChain(modules []Module, seeds ...string) error {
	available := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		available[s] = true
	}
	for _, m := range modules {
		for _, in := range m.GetIO().RequiredInputs {
			if !available[in.Name] {
				return fmt.Errorf("module %s requires %s, which no earlier module produces", m.Name(), in.Name)
			}
		}
		for _, out := range m.GetIO().ProducedOutputs {
			available[out.Name] = true
		}
	}
	return nil
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("cannot register nil module")
	}

	name := m.Name()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}

	if err := ValidateIO(m.GetIO()); err != nil {
		return fmt.Errorf("invalid I/O specification for module %s: %w", name, err)
	}

	r.Lock()
	defer r.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %s is already registered", name)
	}

	r.modules[name] = m
	return nil
}

// Replace registers m, overwriting any module with the same name
func (r *ModuleRegistry) Replace(m Module) error {
	if m == nil || m.Name() == "" {
		return fmt.Errorf("cannot register unnamed module")
	}
	if err := ValidateIO(m.GetIO()); err != nil {
		return fmt.Errorf("invalid I/O specification for module %s: %w", m.Name(), err)
	}

	r.Lock()
	defer r.Unlock()
	r.modules[m.Name()] = m
	return nil
}

// Get retrieves a module by name
func (r *ModuleRegistry) Get(name string) (Module, error) {
	if name == "" {
		return nil, fmt.Errorf("module name cannot be empty")
	}

	r.RLock()
	defer r.RUnlock()

	module, exists := r.modules[name]
	if !exists {
		return nil, fmt.Errorf("module %s not found", name)
	}
	return module, nil
}

// ListModules returns a slice of all registered modules
func (r *ModuleRegistry) ListModules() []Module {
	r.RLock()
	defer r.RUnlock()

	modules := make([]Module, 0, len(r.modules))
	for _, module := range r.modules {
		modules = append(modules, module)
	}
	return modules
}
