package cmd

import (
	"fmt"
	"os"
	"strings"

	tablewriterservice "github.com/RobsonDevCode/depwatch/internal/cmdLineWriters/tablewriter"
	"github.com/RobsonDevCode/depwatch/internal/constants/exportExcelOptions"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	excelexportservice "github.com/RobsonDevCode/depwatch/internal/services/excelExportService"
	scanservice "github.com/RobsonDevCode/depwatch/internal/services/scanService"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "scan a project for outdated and vulnerable dependencies",
	Long: `scan a project for outdated and vulnerable dependencies.

		   Picks up the package manifest in the target directory, resolves the
           latest version of every declared dependency and checks each one
           against the ecosystem's vulnerability source. Results print as
           tables, or as json with --json for piping into other tools.`,
	RunE: runScan,
}

const (
	dirFlag            = "dir"
	prodOnlyFlag       = "prod-only"
	devOnlyFlag        = "dev-only"
	ignoreFlag         = "ignore"
	jsonFlag           = "json"
	exportFlag         = "export"
	failOnFlag         = "fail-on"
	failOnOutdatedFlag = "fail-on-outdated"
)

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, _ := cmd.Flags().GetString(dirFlag)
	prodOnly, _ := cmd.Flags().GetBool(prodOnlyFlag)
	devOnly, _ := cmd.Flags().GetBool(devOnlyFlag)
	ignore, _ := cmd.Flags().GetStringSlice(ignoreFlag)
	jsonOutput, _ := cmd.Flags().GetBool(jsonFlag)
	export, _ := cmd.Flags().GetBool(exportFlag)

	failOn, failOnOutdated, err := failThresholds(cmd)
	if err != nil {
		return err
	}

	opts := scanservice.ScanOptions{
		Root:            dir,
		ProductionOnly:  prodOnly,
		DevelopmentOnly: devOnly,
		Ignore:          append(appConfig.ScanSettings.IgnorePackages, ignore...),
	}

	scanReport, failures, err := scanService.Scan(opts, ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := scanReport.WriteJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		tablewriterservice.DisplayProjectInfo(scanReport.Project, len(scanReport.Dependencies))
		tablewriterservice.DisplayOutdatedTable(scanReport.Outdated)
		tablewriterservice.DisplayVulnerabilityTable(scanReport.Vulnerabilities)
		tablewriterservice.DisplayFailedLookupTable(failures)
		tablewriterservice.DisplayRecommendations(scanReport.Recommendations)

		choice := exportExcelOptions.No
		if export {
			choice = exportExcelOptions.Yes
		} else {
			choice, err = excelexportservice.SelectExportReportToExcel()
			if err != nil {
				return err
			}
		}

		if choice == exportExcelOptions.Yes {
			if err := excelexportservice.ExportReport(scanReport); err != nil {
				return err
			}
		}
	}

	if scanReport.HasBlockingIssues(failOn, failOnOutdated) {
		os.Exit(1)
	}

	return nil
}

// failThresholds resolves the fail gates from flags, falling back to the
// config file when a flag was not given on the command line.
func failThresholds(cmd *cobra.Command) (scannermodels.Severity, bool, error) {
	failOnRaw := appConfig.ScanSettings.FailOnSeverity
	if cmd.Flags().Changed(failOnFlag) {
		failOnRaw, _ = cmd.Flags().GetString(failOnFlag)
	}

	failOn, err := parseFailOnSeverity(failOnRaw)
	if err != nil {
		return "", false, err
	}

	failOnOutdated := appConfig.ScanSettings.FailOnOutdated
	if cmd.Flags().Changed(failOnOutdatedFlag) {
		failOnOutdated, _ = cmd.Flags().GetBool(failOnOutdatedFlag)
	}

	return failOn, failOnOutdated, nil
}

func parseFailOnSeverity(raw string) (scannermodels.Severity, error) {
	if raw == "" {
		return "", nil
	}

	severity := scannermodels.Severity(strings.ToLower(raw))
	switch severity {
	case scannermodels.SeverityLow, scannermodels.SeverityModerate, scannermodels.SeverityHigh, scannermodels.SeverityCritical:
		return severity, nil
	default:
		return "", fmt.Errorf("unknown severity %q, expected low, moderate, high or critical", raw)
	}
}

func init() {
	scanCmd.Flags().StringP(dirFlag, "d", ".", "Project directory holding the manifest to scan")
	scanCmd.Flags().Bool(prodOnlyFlag, false, "Only scan production dependencies")
	scanCmd.Flags().Bool(devOnlyFlag, false, "Only scan development dependencies")
	scanCmd.Flags().StringSliceP(ignoreFlag, "i", nil, "Package names to leave out of the scan")
	scanCmd.Flags().Bool(jsonFlag, false, "Write the report as json to stdout instead of tables")
	scanCmd.Flags().BoolP(exportFlag, "e", false, "Export the report to excel without prompting")
	scanCmd.Flags().String(failOnFlag, "", "Exit non zero when a vulnerability at or above this severity is found")
	scanCmd.Flags().Bool(failOnOutdatedFlag, false, "Exit non zero when any outdated package is found")

	rootCmd.AddCommand(scanCmd)
}
