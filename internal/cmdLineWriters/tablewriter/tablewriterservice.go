package tablewriterservice

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/RobsonDevCode/depwatch/internal/constants/tableHeaders"
	"github.com/RobsonDevCode/depwatch/internal/extensions"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

func newDisplayTable() *tablewriter.Table {
	return tablewriter.NewTable(os.Stdout,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap:  tw.WrapNormal,
					MergeMode: tw.MergeHierarchical}, //wrap long content like titles and ranges
				Alignment:    tw.CellAlignment{Global: tw.AlignCenter},
				ColMaxWidths: tw.CellWidth{Global: 50},
			},
		}),
	)
}

func DisplayProjectInfo(project scannermodels.ProjectInfo, dependencyCount int) {
	fmt.Print("\n Project Information: \n")

	table := newDisplayTable()
	table.Header([]string{"Project", "Ecosystem", "Manifest", "Dependencies"})
	table.Append([]string{
		project.Name,
		project.Ecosystem,
		project.ManifestPath,
		strconv.Itoa(dependencyCount),
	})

	table.Render()
}

func DisplayOutdatedTable(outdated []scannermodels.UpdateCandidate) {
	if len(outdated) == 0 {
		fmt.Print(color.GreenString("\n All dependencies are up to date!\n"))
		return
	}

	slices.SortFunc(outdated, func(a, b scannermodels.UpdateCandidate) int {
		if a.Distance.Rank() != b.Distance.Rank() {
			return b.Distance.Rank() - a.Distance.Rank()
		}
		return strings.Compare(a.Name, b.Name)
	})

	fmt.Printf("\n Found %d Outdated Packages: \n", len(outdated))

	table := newDisplayTable()
	table.Header(tableHeaders.OutdatedTableHeaders)

	for _, candidate := range outdated {
		safe := "No"
		if candidate.Safe {
			safe = "Yes" // has to be a string so we can represent it in the table
		}

		table.Append([]string{
			candidate.Name,
			candidate.CurrentVersion,
			candidate.LatestVersion,
			string(candidate.Kind),
			string(candidate.Distance),
			safe,
		})
	}

	table.Render()
}

func DisplayVulnerabilityTable(vulnerabilities []scannermodels.VulnerabilityFinding) {
	if len(vulnerabilities) == 0 {
		fmt.Print(color.GreenString("\n No Known Vulnerabilities!\n"))
		return
	}

	slices.SortFunc(vulnerabilities, func(a, b scannermodels.VulnerabilityFinding) int {
		if a.Severity.Rank() != b.Severity.Rank() {
			return b.Severity.Rank() - a.Severity.Rank()
		}
		return strings.Compare(a.PackageName, b.PackageName)
	})

	fmt.Printf("\n Found %d Package Vulnerabilities: \n", len(vulnerabilities))

	table := newDisplayTable()
	table.Header(tableHeaders.VulnerabilityTableHeaders)

	for _, finding := range vulnerabilities {
		table.Append([]string{
			finding.PackageName,
			string(finding.Severity),
			extensions.TruncateString(finding.Title, 50),
			finding.Cve,
			finding.FixedVersion,
		})
	}

	table.Render()
}

func DisplayFailedLookupTable(failures []scannermodels.LookupFailure) {
	if len(failures) == 0 {
		return
	}

	fmt.Printf("%s", color.RedString("\nFailed To Resolve Packages: \n"))

	table := newDisplayTable()
	table.Header(tableHeaders.FailedLookupTableHeaders)

	for _, failure := range failures {
		table.Append([]string{
			failure.Name,
			extensions.TruncateString(failure.Err.Error(), 500),
		})
	}

	table.Render()
}

func DisplayRecommendations(recommendations []string) {
	if len(recommendations) == 0 {
		return
	}

	fmt.Print("\n Recommendations: \n")
	for _, recommendation := range recommendations {
		fmt.Printf("  %s\n", color.HiMagentaString(recommendation))
	}
}
