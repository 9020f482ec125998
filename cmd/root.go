package cmd

import (
	"os"

	"github.com/RobsonDevCode/depwatch/internal/configuration"
	fixservice "github.com/RobsonDevCode/depwatch/internal/services/fixService"
	scanservice "github.com/RobsonDevCode/depwatch/internal/services/scanService"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	scanService scanservice.ScanService
	fixService  fixservice.FixService
	appConfig   *configuration.Config
	logger      *logrus.Logger
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "depwatch",
	Short: "scan project dependencies for stale versions and vulnerabilities",
	Long: `scan project dependencies for stale versions and vulnerabilities.

		   Detects the package manifest in a directory, checks every declared
           dependency against its registry and reports which ones are outdated
           or carry known vulnerabilities. Safe updates can be written back
           with the fix command.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag && logger != nil {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

// cant DI directly into the commands so the services are handed over with
// setters before Execute runs
func SetScanService(service scanservice.ScanService) {
	scanService = service
}

func SetFixService(service fixservice.FixService) {
	fixService = service
}

func SetConfig(config *configuration.Config) {
	appConfig = config
}

func SetLogger(l *logrus.Logger) {
	logger = l
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show debug detail for lookups and skipped packages")
}
