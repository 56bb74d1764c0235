package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnzdotmx/vidscribe/internal/utils"
	"github.com/gnzdotmx/vidscribe/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment setup",
	Long:  `Check if the external tools and credentials a transcription needs are properly set up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.LogInfo("Validating environment...")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: %w", errConfig, err)
		}
		utils.LogSuccess("Configuration: OK")

		checks, err := validator.New(&utils.RealCommandExecutor{}).Run(cmd.Context(), cfg)
		fmt.Fprintln(cmd.OutOrStdout(), validator.Table(checks))
		if err != nil {
			return fmt.Errorf("environment validation failed: %w", err)
		}

		utils.LogSuccess("Environment validation completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
