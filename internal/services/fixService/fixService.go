package fixservice

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/RobsonDevCode/depwatch/internal/classifier"
	tablewriterservice "github.com/RobsonDevCode/depwatch/internal/cmdLineWriters/tablewriter"
	"github.com/RobsonDevCode/depwatch/internal/fixer"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type FixOptions struct {
	Root        string
	DryRun      bool
	SkipConfirm bool
	Ignore      []string
}

type FixService interface {
	Fix(opts FixOptions, ctx context.Context) (int, error)
}

type FixProcessor struct {
	scanners   []scanner.ProjectScanner
	classifier classifier.ClassifierService
	fixer      fixer.FixerService
	logger     *logrus.Logger
}

func NewFixProcessor(scanners []scanner.ProjectScanner,
	classifier classifier.ClassifierService,
	fixerService fixer.FixerService,
	logger *logrus.Logger) *FixProcessor {
	return &FixProcessor{
		scanners:   scanners,
		classifier: classifier,
		fixer:      fixerService,
		logger:     logger,
	}
}

// Fix classifies the project's dependencies and writes the safe subset of
// updates back to the manifest. The vulnerability check is skipped here,
// only version lookups are needed to work out what can be bumped.
func (f *FixProcessor) Fix(opts FixOptions, ctx context.Context) (int, error) {
	projectScanner, err := scanner.Detect(opts.Root, f.scanners)
	if err != nil {
		return 0, err
	}

	project, err := projectScanner.IdentifyProject(opts.Root)
	if err != nil {
		return 0, err
	}

	fmt.Printf("Selected Project: %s \n", color.CyanString("%s", project.Name))

	deps, err := projectScanner.ListDependencies(opts.Root, scannermodels.ListOptions{
		Ignore: opts.Ignore,
	})
	if err != nil {
		return 0, err
	}

	candidates, _ := f.classifier.Classify(deps, projectScanner, ctx)

	safe := fixer.SafeUpdates(candidates)
	if len(safe) == 0 {
		fmt.Print(color.GreenString("\n No safe updates to apply, everything is either current or needs a manual review.\n"))
		return 0, nil
	}

	tablewriterservice.DisplayOutdatedTable(safe)

	if opts.DryRun {
		fmt.Printf("\n%s\n", color.HiYellowString("Dry run, %d updates would be applied but nothing has been written", len(safe)))
		return 0, nil
	}

	if !opts.SkipConfirm {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Apply %d safe updates to %s?", len(safe), project.ManifestPath),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return 0, fmt.Errorf("confirmation error: %w", err)
		}

		if !confirmed {
			fmt.Print("No changes made\n")
			return 0, nil
		}
	}

	applied, err := f.fixer.Apply(projectScanner, opts.Root, safe)
	if err != nil {
		return 0, err
	}

	fmt.Printf("\n%s\n", color.GreenString("Applied %d safe updates to %s", applied, project.ManifestPath))

	return applied, nil
}
