package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/modules/format"
	"github.com/gnzdotmx/vidscribe/internal/utils"
	"github.com/gnzdotmx/vidscribe/internal/workflow"
)

// runFlags holds the configuration overrides of the transcribe command
type runFlags struct {
	diarize      bool
	noDiarize    bool
	speakers     int
	language     string
	model        string
	outputDir    string
	fusion       string
	segmentsFile string
	turnsFile    string
	stateFile    string
}

var transcribeFlags runFlags

// errConfig marks configuration problems, reported without the media hints
var errConfig = errors.New("invalid configuration")

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <video>",
	Short: "Transcribe a video file",
	Long: `Extract the audio of a video, transcribe it and, when diarization is enabled,
label each line with its speaker. Transcripts are written to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := transcribeFlags.apply(cmd, cfg); err != nil {
			return fmt.Errorf("%w: %w", errConfig, err)
		}

		if err := transcribeFile(cmd.Context(), cmd.OutOrStdout(), cfg, args[0]); err != nil {
			reportError(cmd.ErrOrStderr(), err, args[0])
			return fmt.Errorf("%w: %w", ErrReported, err)
		}
		return nil
	},
}

func init() {
	f := transcribeCmd.Flags()
	f.BoolVar(&transcribeFlags.diarize, "diarize", false, "Label lines with speakers")
	f.BoolVar(&transcribeFlags.noDiarize, "no-diarize", false, "Skip speaker diarization")
	f.IntVarP(&transcribeFlags.speakers, "speakers", "s", 0, "Expected number of speakers")
	f.StringVar(&transcribeFlags.language, "language", "", "Primary spoken language (BCP 47 tag, e.g. it, en)")
	f.StringVarP(&transcribeFlags.model, "model", "m", "", "Whisper model tier: tiny, base, small, medium, large, turbo")
	f.StringVarP(&transcribeFlags.outputDir, "output-dir", "o", "", "Directory for the transcript files")
	f.StringVar(&transcribeFlags.fusion, "fusion", "", "Speaker assignment strategy: first-match, max-overlap")
	f.StringVar(&transcribeFlags.segmentsFile, "segments-file", "", "Read transcription segments from a Whisper JSON file instead of running Whisper")
	f.StringVar(&transcribeFlags.turnsFile, "turns-file", "", "Read speaker turns from an RTTM file instead of running pyannote")
	f.StringVar(&transcribeFlags.stateFile, "state-file", "", "Write a YAML summary of the run to this path")
	transcribeCmd.MarkFlagsMutuallyExclusive("diarize", "no-diarize")
	rootCmd.AddCommand(transcribeCmd)
}

// apply copies the flags that were set on the command line into cfg
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("diarize") {
		cfg.EnableDiarization = f.diarize
	}
	if flags.Changed("speakers") {
		cfg.ExpectedSpeakerCount = f.speakers
	}
	if flags.Changed("language") {
		cfg.PrimaryLanguage = f.language
	}
	if flags.Changed("model") {
		tier, err := config.ParseModelTier(f.model)
		if err != nil {
			return err
		}
		cfg.ModelTier = tier
	}
	if flags.Changed("fusion") {
		strategy, err := config.ParseFusionStrategy(f.fusion)
		if err != nil {
			return err
		}
		cfg.FusionStrategy = strategy
	}
	if flags.Changed("output-dir") {
		dir, err := utils.ExpandHomeDir(f.outputDir)
		if err != nil {
			return err
		}
		cfg.OutputDir = filepath.Clean(dir)
	}
	if flags.Changed("segments-file") {
		cfg.SegmentsFile = f.segmentsFile
	}
	if flags.Changed("turns-file") {
		cfg.TurnsFile = f.turnsFile
		cfg.EnableDiarization = true
	}
	if flags.Changed("no-diarize") && f.noDiarize {
		cfg.EnableDiarization = false
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	return cfg, nil
}

// transcribeFile runs the pipeline on input and prints the summary and preview
func transcribeFile(ctx context.Context, out io.Writer, cfg *config.Config, input string) error {
	pipeline, err := workflow.New(cfg)
	if err != nil {
		return err
	}

	utils.LogInfo("Transcribing %s", input)
	run, state, err := pipeline.Run(ctx, input)

	if state != nil {
		if utils.CurrentLogLevel >= utils.LevelVerbose || (err != nil && utils.CurrentLogLevel > utils.LevelQuiet) {
			fmt.Fprintln(out, state.Table())
		}
		if transcribeFlags.stateFile != "" {
			if saveErr := state.SaveWorkflowState(transcribeFlags.stateFile); saveErr != nil {
				utils.LogWarning("Failed to save run state: %v", saveErr)
			}
		}
	}
	if err != nil {
		return err
	}

	utils.LogSuccess("Transcription completed! Check the '%s' folder for %s", cfg.OutputDir, filepath.Base(run.Artifacts[0]))
	if utils.CurrentLogLevel > utils.LevelQuiet && len(run.Preview) > 0 {
		fmt.Fprintln(out, "\nTranscription Preview:")
		for _, line := range run.Preview {
			fmt.Fprintln(out, line)
		}
	}
	if len(run.Preview) == format.PreviewLines && len(run.Lines) > format.PreviewLines {
		utils.LogVerbose("... %d more lines", len(run.Lines)-format.PreviewLines)
	}
	return nil
}
