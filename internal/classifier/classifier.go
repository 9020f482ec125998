package classifier

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/sirupsen/logrus"
)

type ClassifierService interface {
	Classify(deps []scannermodels.Dependency, projectScanner scanner.ProjectScanner, ctx context.Context) ([]scannermodels.UpdateCandidate, []scannermodels.LookupFailure)
}

type concurrentLookupResult struct {
	candidate *scannermodels.UpdateCandidate
	failure   *scannermodels.LookupFailure
}

type Classifier struct {
	logger        *logrus.Logger
	maxConcurrent int
}

func NewClassifier(maxConcurrent int, logger *logrus.Logger) *Classifier {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &Classifier{
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Classify resolves the latest version for every dependency and works out
// how far behind each one is. Lookups fan out with a bounded limit so the
// registry is not hammered, and a failed lookup only costs that one
// dependency, the rest of the batch carries on.
func (c *Classifier) Classify(deps []scannermodels.Dependency, projectScanner scanner.ProjectScanner, ctx context.Context) ([]scannermodels.UpdateCandidate, []scannermodels.LookupFailure) {
	logger := c.logger.WithField("operation", "classify_updates")

	results := make(chan concurrentLookupResult, len(deps))
	semaphore := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup

	for _, dep := range deps {
		current, ok := currentVersionOf(dep)
		if !ok {
			results <- concurrentLookupResult{failure: &scannermodels.LookupFailure{
				Name: dep.Name,
				Err:  fmt.Errorf("no concrete version can be derived from %q", dep.DeclaredConstraint),
			}}
			continue
		}

		wg.Add(1)
		go func(dep scannermodels.Dependency, current *semver.Version) {
			defer wg.Done()

			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			latest, err := projectScanner.ResolveLatestVersion(dep.Name, ctx)
			if err != nil {
				results <- concurrentLookupResult{failure: &scannermodels.LookupFailure{
					Name: dep.Name,
					Err:  err,
				}}
				return
			}

			if candidate := buildCandidate(dep, current, latest); candidate != nil {
				results <- concurrentLookupResult{candidate: candidate}
			}
		}(dep, current)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var candidates []scannermodels.UpdateCandidate
	var failures []scannermodels.LookupFailure
	for result := range results {
		if result.candidate != nil {
			candidates = append(candidates, *result.candidate)
		}
		if result.failure != nil {
			failures = append(failures, *result.failure)
		}
	}

	//collection order depends on goroutine scheduling, sort so repeated
	//scans come out identical
	slices.SortFunc(candidates, func(a, b scannermodels.UpdateCandidate) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(string(a.Kind), string(b.Kind))
	})
	slices.SortFunc(failures, func(a, b scannermodels.LookupFailure) int {
		return strings.Compare(a.Name, b.Name)
	})

	for _, failure := range failures {
		logger.WithError(failure.Err).WithField("package", failure.Name).Debug("Skipped during classification")
	}
	logger.WithFields(logrus.Fields{
		"dependency_count": len(deps),
		"outdated_count":   len(candidates),
		"skipped_count":    len(failures),
	}).Debug("Classification completed")

	return candidates, failures
}

// currentVersionOf prefers the version actually installed, falling back to
// the version pinned by the declared constraint.
func currentVersionOf(dep scannermodels.Dependency) (*semver.Version, bool) {
	raw := dep.InstalledVersion
	if raw == "" {
		_, raw = scanner.SplitConstraint(dep.DeclaredConstraint)
	}
	if raw == "" {
		return nil, false
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, false
	}

	return version, true
}

func buildCandidate(dep scannermodels.Dependency, current *semver.Version, latestRaw string) *scannermodels.UpdateCandidate {
	if latestRaw == current.Original() {
		return nil
	}

	latest, err := semver.NewVersion(latestRaw)
	if err != nil {
		//the registry answered with something that is not a semantic
		//version, report it but never hand it to the fix pass
		return &scannermodels.UpdateCandidate{
			Name:               dep.Name,
			CurrentVersion:     current.Original(),
			DeclaredConstraint: dep.DeclaredConstraint,
			LatestVersion:      latestRaw,
			Kind:               dep.Kind,
			Distance:           scannermodels.DistanceUnknown,
		}
	}

	if latest.Equal(current) {
		return nil
	}

	distance := distanceBetween(current, latest)
	if distance == scannermodels.DistanceNone {
		return nil
	}

	return &scannermodels.UpdateCandidate{
		Name:               dep.Name,
		CurrentVersion:     current.Original(),
		DeclaredConstraint: dep.DeclaredConstraint,
		LatestVersion:      latestRaw,
		Kind:               dep.Kind,
		Distance:           distance,
		Safe:               distance == scannermodels.DistancePatch || distance == scannermodels.DistanceMinor,
		Breaking:           distance == scannermodels.DistanceMajor,
	}
}

func distanceBetween(current *semver.Version, latest *semver.Version) scannermodels.UpdateDistance {
	if latest.Major() > current.Major() {
		return scannermodels.DistanceMajor
	}
	if latest.Major() == current.Major() && latest.Minor() > current.Minor() {
		return scannermodels.DistanceMinor
	}
	if latest.Major() == current.Major() && latest.Minor() == current.Minor() && latest.Patch() > current.Patch() {
		return scannermodels.DistancePatch
	}

	return scannermodels.DistanceNone
}
