package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnzdotmx/vidscribe/internal/utils"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
	// configPath points at an optional YAML or TOML configuration file
	configPath string
)

// ErrReported marks failures whose details were already printed
var ErrReported = errors.New("failure already reported")

var rootCmd = &cobra.Command{
	Use:   "vidscribe",
	Short: "Speaker-attributed transcripts for video files",
	Long: `vidscribe extracts the audio track of a video, transcribes it with Whisper,
labels who spoke when with pyannote and writes timestamped transcripts.

Run without arguments for the interactive prompt.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set the global log level based on the flag
		logLevel := utils.LogLevelFromString(verbosityLevel)
		utils.SetLogLevel(logLevel)
	},
	RunE: runInteractive,
}

// Execute runs the CLI; ctx is cancelled on interrupt
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Initialize global flags
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a YAML or TOML configuration file")
}

func printBanner(w io.Writer) {
	rule := strings.Repeat("-", 50)
	fmt.Fprintln(w, utils.Highlight("MP4 to Text Transcription Tool"))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nTips for entering file path:")
	fmt.Fprintln(w, "1. You can drag and drop the file into this window")
	fmt.Fprintln(w, "2. Relative paths are resolved from the current folder")
	fmt.Fprintln(w, "3. For full paths, you can copy the path from your file manager")
	fmt.Fprintln(w, "\nExample paths:")
	fmt.Fprintln(w, "Relative: video.mp4")
	fmt.Fprintln(w, "Full: ~/Videos/video.mp4")
	fmt.Fprintln(w, rule)
}

// runInteractive prompts for one path, runs the pipeline and waits for Enter
// whatever the outcome
func runInteractive(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	printBanner(out)
	fmt.Fprint(out, "\nEnter the path to your MP4 file: ")
	raw, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read input path: %w", err)
	}
	raw = strings.TrimRight(raw, "\r\n")

	cfg, err := loadConfig()
	if err == nil {
		err = transcribeFile(cmd.Context(), out, cfg, raw)
	}
	if err != nil {
		reportError(out, err, raw)
	}

	fmt.Fprint(out, "\nPress Enter to exit...")
	_, _ = reader.ReadString('\n')
	return nil
}
