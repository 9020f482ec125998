package fixservice

import (
	"context"
	"errors"
	"testing"

	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	detects     bool
	project     scannermodels.ProjectInfo
	identifyErr error
	deps        []scannermodels.Dependency
	listErr     error
}

func (s *stubScanner) Ecosystem() string {
	return s.project.Ecosystem
}

func (s *stubScanner) DetectManifest(root string) bool {
	return s.detects
}

func (s *stubScanner) IdentifyProject(root string) (scannermodels.ProjectInfo, error) {
	return s.project, s.identifyErr
}

func (s *stubScanner) ListDependencies(root string, opts scannermodels.ListOptions) ([]scannermodels.Dependency, error) {
	return s.deps, s.listErr
}

func (s *stubScanner) ResolveLatestVersion(name string, ctx context.Context) (string, error) {
	return "", nil
}

func (s *stubScanner) FetchPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error) {
	return nil, nil
}

func (s *stubScanner) FindVulnerabilities(root string, deps []scannermodels.Dependency, ctx context.Context) []scannermodels.VulnerabilityFinding {
	return nil
}

func (s *stubScanner) RewriteManifest(updates []scannermodels.UpdateCandidate, root string) error {
	return nil
}

type stubClassifier struct {
	candidates []scannermodels.UpdateCandidate
}

func (s *stubClassifier) Classify(deps []scannermodels.Dependency, projectScanner scanner.ProjectScanner, ctx context.Context) ([]scannermodels.UpdateCandidate, []scannermodels.LookupFailure) {
	return s.candidates, nil
}

type stubFixer struct {
	applyErr   error
	applyCalls int
	appliedSet []scannermodels.UpdateCandidate
}

func (s *stubFixer) Apply(projectScanner scanner.ProjectScanner, root string, outdated []scannermodels.UpdateCandidate) (int, error) {
	s.applyCalls++
	s.appliedSet = outdated
	if s.applyErr != nil {
		return 0, s.applyErr
	}
	return len(outdated), nil
}

func newTestProcessor(projectScanner *stubScanner, updateClassifier *stubClassifier, manifestFixer *stubFixer) *FixProcessor {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewFixProcessor([]scanner.ProjectScanner{projectScanner}, updateClassifier, manifestFixer, logger)
}

func mixedCandidates() []scannermodels.UpdateCandidate {
	return []scannermodels.UpdateCandidate{
		{Name: "express", CurrentVersion: "4.17.1", LatestVersion: "4.18.2", Distance: scannermodels.DistanceMinor, Safe: true},
		{Name: "react", CurrentVersion: "17.0.2", LatestVersion: "18.0.0", Distance: scannermodels.DistanceMajor, Breaking: true},
	}
}

func TestFixAppliesOnlyTheSafeUpdates(t *testing.T) {
	projectScanner := &stubScanner{detects: true, project: scannermodels.ProjectInfo{Name: "checkout-web", ManifestPath: "package.json"}}
	manifestFixer := &stubFixer{}

	applied, err := newTestProcessor(projectScanner, &stubClassifier{candidates: mixedCandidates()}, manifestFixer).
		Fix(FixOptions{Root: ".", SkipConfirm: true}, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, manifestFixer.applyCalls)
	require.Len(t, manifestFixer.appliedSet, 1)
	assert.Equal(t, "express", manifestFixer.appliedSet[0].Name)
}

func TestFixDryRunNeverWrites(t *testing.T) {
	projectScanner := &stubScanner{detects: true}
	manifestFixer := &stubFixer{}

	applied, err := newTestProcessor(projectScanner, &stubClassifier{candidates: mixedCandidates()}, manifestFixer).
		Fix(FixOptions{Root: ".", DryRun: true}, context.Background())

	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Zero(t, manifestFixer.applyCalls)
}

func TestFixWithNothingSafeStopsEarly(t *testing.T) {
	projectScanner := &stubScanner{detects: true}
	manifestFixer := &stubFixer{}
	onlyBreaking := &stubClassifier{candidates: []scannermodels.UpdateCandidate{
		{Name: "react", Distance: scannermodels.DistanceMajor, Breaking: true},
	}}

	applied, err := newTestProcessor(projectScanner, onlyBreaking, manifestFixer).
		Fix(FixOptions{Root: "."}, context.Background())

	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Zero(t, manifestFixer.applyCalls)
}

func TestFixFailsWhenNoScannerMatches(t *testing.T) {
	_, err := newTestProcessor(&stubScanner{detects: false}, &stubClassifier{}, &stubFixer{}).
		Fix(FixOptions{Root: "."}, context.Background())

	assert.ErrorIs(t, err, scanner.ErrProjectTypeUndetected)
}

func TestFixPropagatesApplyErrors(t *testing.T) {
	projectScanner := &stubScanner{detects: true}
	manifestFixer := &stubFixer{
		applyErr: &scanner.ManifestWriteError{Path: "package.json", Err: errors.New("permission denied")},
	}

	_, err := newTestProcessor(projectScanner, &stubClassifier{candidates: mixedCandidates()}, manifestFixer).
		Fix(FixOptions{Root: ".", SkipConfirm: true}, context.Background())

	var writeErr *scanner.ManifestWriteError
	require.True(t, errors.As(err, &writeErr))
}
