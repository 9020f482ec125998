package scanservice

import (
	"github.com/RobsonDevCode/depwatch/internal/classifier"
	"github.com/RobsonDevCode/depwatch/internal/report"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

type ScanOptions struct {
	Root            string
	ProductionOnly  bool
	DevelopmentOnly bool
	Ignore          []string
}

type ScanService interface {
	Scan(opts ScanOptions, ctx context.Context) (*report.Report, []scannermodels.LookupFailure, error)
}

type ScanProcessor struct {
	scanners   []scanner.ProjectScanner
	classifier classifier.ClassifierService
	logger     *logrus.Logger
}

func NewScanProcessor(scanners []scanner.ProjectScanner,
	classifier classifier.ClassifierService,
	logger *logrus.Logger) *ScanProcessor {
	return &ScanProcessor{
		scanners:   scanners,
		classifier: classifier,
		logger:     logger,
	}
}

// Scan runs the full pipeline against the project in opts.Root, manifest
// detection, dependency listing, update classification and the
// vulnerability check, and folds the results into one report. Lookup
// failures come back separately so callers can surface them without
// treating the scan as failed.
func (s *ScanProcessor) Scan(opts ScanOptions, ctx context.Context) (*report.Report, []scannermodels.LookupFailure, error) {
	logger := s.logger.WithField("operation", "scan_project")

	projectScanner, err := scanner.Detect(opts.Root, s.scanners)
	if err != nil {
		return nil, nil, err
	}

	project, err := projectScanner.IdentifyProject(opts.Root)
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"project":   project.Name,
		"ecosystem": project.Ecosystem,
	}).Debug("Scanning project")

	deps, err := projectScanner.ListDependencies(opts.Root, scannermodels.ListOptions{
		Ignore:          opts.Ignore,
		ProductionOnly:  opts.ProductionOnly,
		DevelopmentOnly: opts.DevelopmentOnly,
	})
	if err != nil {
		return nil, nil, err
	}

	var candidates []scannermodels.UpdateCandidate
	var failures []scannermodels.LookupFailure
	var findings []scannermodels.VulnerabilityFinding

	//version lookups and the vulnerability check are independent of each
	//other so both run at once
	group, gCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()

		default:
			candidates, failures = s.classifier.Classify(deps, projectScanner, gCtx)
			return nil
		}
	})

	group.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()

		default:
			findings = projectScanner.FindVulnerabilities(opts.Root, deps, gCtx)
			return nil
		}
	})

	if concurrentErr := group.Wait(); concurrentErr != nil {
		return nil, nil, concurrentErr
	}

	scanReport := report.Assemble(project, deps, candidates, findings)
	logger.WithFields(logrus.Fields{
		"dependency_count":    len(deps),
		"outdated_count":      len(candidates),
		"vulnerability_count": len(findings),
	}).Debug("Scan completed")

	return scanReport, failures, nil
}
