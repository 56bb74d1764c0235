package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/utils"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvHuggingFaceToken = "HUGGINGFACE_TOKEN"
	EnvLanguage         = "VIDSCRIBE_LANGUAGE"
	EnvModel            = "VIDSCRIBE_MODEL"
	EnvDiarize          = "VIDSCRIBE_DIARIZE"
	EnvSpeakers         = "VIDSCRIBE_SPEAKERS"
	EnvOutputDir        = "VIDSCRIBE_OUTPUT_DIR"
	EnvScratchDir       = "VIDSCRIBE_SCRATCH_DIR"
	EnvFusion           = "VIDSCRIBE_FUSION"
)

// Load builds a configuration from defaults, the optional file at path and the
// environment. Flags are applied by the caller afterwards, then Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	expanded, err := utils.ExpandHomeDir(path)
	if err != nil {
		return err
	}
	if err := utils.ValidateFileExtension(expanded, []string{".yaml", ".yml", ".toml"}); err != nil {
		return err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(expanded), ".toml") {
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config %s: %w", expanded, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", expanded, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHuggingFaceToken); ok {
		c.HuggingFaceToken = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLanguage); ok && v != "" {
		c.PrimaryLanguage = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		tier, err := ParseModelTier(v)
		if err != nil {
			return err
		}
		c.ModelTier = tier
	}
	if v, ok := lookup(EnvDiarize); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return &utils.ValidationError{Field: EnvDiarize, Message: "expected a boolean", Err: err}
		}
		c.EnableDiarization = enabled
	}
	if v, ok := lookup(EnvSpeakers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &utils.ValidationError{Field: EnvSpeakers, Message: "expected an integer", Err: err}
		}
		c.ExpectedSpeakerCount = n
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.OutputDir = v
	}
	if v, ok := lookup(EnvScratchDir); ok && v != "" {
		c.ScratchRoot = v
	}
	if v, ok := lookup(EnvFusion); ok && v != "" {
		strategy, err := ParseFusionStrategy(v)
		if err != nil {
			return err
		}
		c.FusionStrategy = strategy
	}
	return nil
}

func (c *Config) normalize() error {
	var errs []error
	for _, p := range []*string{&c.OutputDir, &c.ScratchRoot, &c.SegmentsFile, &c.TurnsFile} {
		if *p == "" {
			continue
		}
		expanded, err := utils.ExpandHomeDir(*p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*p = filepath.Clean(expanded)
	}
	c.ModelTier = ModelTier(strings.ToLower(string(c.ModelTier)))
	c.FusionStrategy = FusionStrategy(strings.ToLower(string(c.FusionStrategy)))
	return errors.Join(errs...)
}
