// Package config holds the typed pipeline configuration and its loaders.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnzdotmx/vidscribe/internal/utils"
	"golang.org/x/text/language"
)

// ModelTier selects the size/accuracy trade-off of the recognition model
type ModelTier string

const (
	ModelTiny   ModelTier = "tiny"
	ModelBase   ModelTier = "base"
	ModelSmall  ModelTier = "small"
	ModelMedium ModelTier = "medium"
	ModelLarge  ModelTier = "large"
	ModelTurbo  ModelTier = "turbo"
)

// ModelTiers lists the accepted tiers from smallest to largest
var ModelTiers = []ModelTier{ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge, ModelTurbo}

// FusionStrategy selects how segments are matched to speaker turns
type FusionStrategy string

const (
	// FusionFirstMatch picks the first turn containing the segment start
	FusionFirstMatch FusionStrategy = "first-match"
	// FusionMaxOverlap picks the turn sharing the most time with the segment
	FusionMaxOverlap FusionStrategy = "max-overlap"
)

// Config is the single typed configuration of a pipeline run
type Config struct {
	PrimaryLanguage string    `yaml:"primaryLanguage" toml:"primary_language"`
	ModelTier       ModelTier `yaml:"modelTier" toml:"model_tier"`

	EnableDiarization      bool   `yaml:"enableDiarization" toml:"enable_diarization"`
	ExpectedSpeakerCount   int    `yaml:"expectedSpeakerCount" toml:"expected_speaker_count"`
	DiarizationModel       string `yaml:"diarizationModel" toml:"diarization_model"`
	FailOnEmptyDiarization bool   `yaml:"failOnEmptyDiarization" toml:"fail_on_empty_diarization"`
	HuggingFaceToken       string `yaml:"-" toml:"-"`

	OutputDir   string `yaml:"outputDir" toml:"output_dir"`
	ScratchRoot string `yaml:"scratchRoot" toml:"scratch_root"`

	FFmpegBinary  string `yaml:"ffmpegBinary" toml:"ffmpeg_binary"`
	WhisperBinary string `yaml:"whisperBinary" toml:"whisper_binary"`
	PythonBinary  string `yaml:"pythonBinary" toml:"python_binary"`

	FusionStrategy FusionStrategy `yaml:"fusionStrategy" toml:"fusion_strategy"`
	WrapWidth      int            `yaml:"wrapWidth" toml:"wrap_width"`
	ParagraphSize  int            `yaml:"paragraphSize" toml:"paragraph_size"`

	// Precomputed engine results; set from flags only
	SegmentsFile string `yaml:"-" toml:"-"`
	TurnsFile    string `yaml:"-" toml:"-"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		PrimaryLanguage:      "it",
		ModelTier:            ModelTurbo,
		EnableDiarization:    true,
		ExpectedSpeakerCount: 2,
		DiarizationModel:     "pyannote/speaker-diarization@2.1",
		OutputDir:            "output",
		ScratchRoot:          "temp",
		FFmpegBinary:         "ffmpeg",
		WhisperBinary:        "whisper",
		PythonBinary:         "python3",
		FusionStrategy:       FusionFirstMatch,
		WrapWidth:            100,
		ParagraphSize:        4,
	}
}

// ParseModelTier converts a name to a ModelTier
func ParseModelTier(s string) (ModelTier, error) {
	tier := ModelTier(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(ModelTiers, tier) {
		return "", &utils.ValidationError{
			Field:   "modelTier",
			Message: fmt.Sprintf("unknown model tier %q, expected one of %v", s, ModelTiers),
		}
	}
	return tier, nil
}

// ParseFusionStrategy converts a name to a FusionStrategy
func ParseFusionStrategy(s string) (FusionStrategy, error) {
	switch FusionStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case FusionFirstMatch:
		return FusionFirstMatch, nil
	case FusionMaxOverlap:
		return FusionMaxOverlap, nil
	default:
		return "", &utils.ValidationError{
			Field:   "fusionStrategy",
			Message: fmt.Sprintf("unknown fusion strategy %q, expected %s or %s", s, FusionFirstMatch, FusionMaxOverlap),
		}
	}
}

// Language returns the parsed primary language tag
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.PrimaryLanguage)
	if err != nil {
		return language.Und
	}
	return tag
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PrimaryLanguage) == "" {
		return &utils.ValidationError{Field: "primaryLanguage", Message: "primary language is required"}
	}
	if _, err := language.Parse(c.PrimaryLanguage); err != nil {
		return &utils.ValidationError{Field: "primaryLanguage", Message: fmt.Sprintf("invalid language tag %q", c.PrimaryLanguage), Err: err}
	}
	if _, err := ParseModelTier(string(c.ModelTier)); err != nil {
		return err
	}
	if _, err := ParseFusionStrategy(string(c.FusionStrategy)); err != nil {
		return err
	}
	if c.EnableDiarization && c.ExpectedSpeakerCount < 1 {
		return &utils.ValidationError{Field: "expectedSpeakerCount", Message: "must be at least 1 when diarization is enabled"}
	}
	if c.WrapWidth < 1 {
		return &utils.ValidationError{Field: "wrapWidth", Message: "must be at least 1"}
	}
	if c.ParagraphSize < 1 {
		return &utils.ValidationError{Field: "paragraphSize", Message: "must be at least 1"}
	}
	if c.OutputDir == "" {
		return &utils.ValidationError{Field: "outputDir", Message: "output directory is required"}
	}
	if c.ScratchRoot == "" {
		return &utils.ValidationError{Field: "scratchRoot", Message: "scratch directory is required"}
	}
	if c.FFmpegBinary == "" {
		return &utils.ValidationError{Field: "ffmpegBinary", Message: "decoder binary is required"}
	}
	return nil
}
