package cmd

import (
	fixservice "github.com/RobsonDevCode/depwatch/internal/services/fixService"
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "apply safe dependency updates to the manifest",
	Long: `apply safe dependency updates to the manifest.

		   Classifies every declared dependency and rewrites the manifest with
           the latest patch and minor versions. Major and uncomparable updates
           are listed but never written, those need a manual review.`,
	RunE: runFix,
}

const (
	dryRunFlag = "dry-run"
	yesFlag    = "yes"
)

func runFix(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, _ := cmd.Flags().GetString(dirFlag)
	dryRun, _ := cmd.Flags().GetBool(dryRunFlag)
	yes, _ := cmd.Flags().GetBool(yesFlag)

	opts := fixservice.FixOptions{
		Root:        dir,
		DryRun:      dryRun,
		SkipConfirm: yes,
		Ignore:      appConfig.ScanSettings.IgnorePackages,
	}

	if _, err := fixService.Fix(opts, ctx); err != nil {
		return err
	}

	return nil
}

func init() {
	fixCmd.Flags().StringP(dirFlag, "d", ".", "Project directory holding the manifest to fix")
	fixCmd.Flags().Bool(dryRunFlag, false, "Show what would change without writing the manifest")
	fixCmd.Flags().BoolP(yesFlag, "y", false, "Apply updates without asking for confirmation")

	rootCmd.AddCommand(fixCmd)
}
