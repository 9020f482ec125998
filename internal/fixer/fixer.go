package fixer

import (
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/sirupsen/logrus"
)

type FixerService interface {
	Apply(projectScanner scanner.ProjectScanner, root string, outdated []scannermodels.UpdateCandidate) (int, error)
}

type Fixer struct {
	logger *logrus.Logger
}

func NewFixer(logger *logrus.Logger) *Fixer {
	return &Fixer{
		logger: logger,
	}
}

// SafeUpdates filters candidates down to the ones eligible for automatic
// application, patch and minor bumps only. Major and unknown distance
// updates stay in the report but are never written to the manifest.
func SafeUpdates(outdated []scannermodels.UpdateCandidate) []scannermodels.UpdateCandidate {
	var safe []scannermodels.UpdateCandidate
	for _, candidate := range outdated {
		if candidate.Safe && !candidate.Breaking {
			safe = append(safe, candidate)
		}
	}

	return safe
}

// Apply rewrites the manifest with every safe update in one pass and returns
// how many were applied. An empty safe set performs no write at all, nothing
// to do is success.
func (f *Fixer) Apply(projectScanner scanner.ProjectScanner, root string, outdated []scannermodels.UpdateCandidate) (int, error) {
	logger := f.logger.WithField("operation", "apply_fixes")

	safe := SafeUpdates(outdated)
	if len(safe) == 0 {
		logger.Debug("No safe updates to apply")
		return 0, nil
	}

	if err := projectScanner.RewriteManifest(safe, root); err != nil {
		return 0, err
	}

	logger.WithField("applied_count", len(safe)).Debug("Manifest rewritten")
	return len(safe), nil
}
