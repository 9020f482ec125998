package excelexportservice

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/RobsonDevCode/depwatch/internal/constants/exportExcelOptions"
	"github.com/RobsonDevCode/depwatch/internal/constants/tableHeaders"
	"github.com/RobsonDevCode/depwatch/internal/report"
	"github.com/xuri/excelize/v2"
)

const saveFileTo = "./export"
const outdatedSheetName = "Outdated Packages"
const vulnerabilitySheetName = "Vulnerabilities"

func ExportReport(scanReport *report.Report) error {
	if err := os.MkdirAll(saveFileTo, 0755); err != nil {
		return fmt.Errorf("error creating directory %s, %w", saveFileTo, err)
	}

	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", outdatedSheetName)
	for i, header := range tableHeaders.ExcelOutdatedHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(outdatedSheetName, cell, header)
	}

	row := 2 // excel is 1 indexed and we skip headers
	for _, candidate := range scanReport.Outdated {
		rowData := []interface{}{
			candidate.Name,
			candidate.CurrentVersion,
			candidate.DeclaredConstraint,
			candidate.LatestVersion,
			string(candidate.Kind),
			string(candidate.Distance),
			candidate.Safe,
			candidate.Breaking,
		}

		file.SetSheetRow(outdatedSheetName, fmt.Sprintf("A%d", row), &rowData)
		row++
	}

	if _, err := file.NewSheet(vulnerabilitySheetName); err != nil {
		return fmt.Errorf("error creating sheet %s, %w", vulnerabilitySheetName, err)
	}
	for i, header := range tableHeaders.ExcelVulnerabilityHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(vulnerabilitySheetName, cell, header)
	}

	row = 2
	for _, finding := range scanReport.Vulnerabilities {
		rowData := []interface{}{
			finding.PackageName,
			string(finding.Severity),
			finding.Title,
			finding.Cve,
			finding.Url,
			finding.AffectedRange,
			finding.FixedVersion,
			finding.FixAvailable,
		}

		file.SetSheetRow(vulnerabilitySheetName, fmt.Sprintf("A%d", row), &rowData)
		row++
	}

	name := scanReport.Project.Name
	if name == "" {
		name = "project"
	}
	// scoped package names hold path separators, keep them out of the file name
	name = strings.NewReplacer("/", "-", "\\", "-", "@", "").Replace(name)

	fileName := fmt.Sprintf("depwatch_%s_%s.xlsx", name, time.Now().Format("2006-01-02T15-04-05"))
	fullPath := filepath.Join(saveFileTo, fileName)

	if err := file.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save excel to %s, %w", fullPath, err)
	}

	fmt.Printf("Your file has been saved to: %s", fullPath)

	return nil
}

func SelectExportReportToExcel() (string, error) {

	prompt := &survey.Select{
		Message: "Export Scan Report",
		Options: exportExcelOptions.ExcelOptions,
	}

	var selectedIndex int
	err := survey.AskOne(prompt, &selectedIndex)
	if err != nil {
		fmt.Print("selection cancelled")
		return "", fmt.Errorf("selection error: %w", err)
	}

	return exportExcelOptions.ExcelOptions[selectedIndex], nil
}
