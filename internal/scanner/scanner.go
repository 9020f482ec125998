package scanner

import (
	"context"

	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
)

// ProjectScanner is the capability set every supported ecosystem has to
// provide. Registry and feed calls take a context so the caller controls
// timeouts, manifest access is purely local.
type ProjectScanner interface {
	Ecosystem() string
	DetectManifest(root string) bool
	IdentifyProject(root string) (scannermodels.ProjectInfo, error)
	ListDependencies(root string, opts scannermodels.ListOptions) ([]scannermodels.Dependency, error)
	ResolveLatestVersion(name string, ctx context.Context) (string, error)
	FetchPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error)
	FindVulnerabilities(root string, deps []scannermodels.Dependency, ctx context.Context) []scannermodels.VulnerabilityFinding
	RewriteManifest(updates []scannermodels.UpdateCandidate, root string) error
}

// Detect walks the scanner list in registration order and picks the first
// one whose manifest exists in root. A project holding more than one
// supported manifest is treated as the first match.
func Detect(root string, scanners []ProjectScanner) (ProjectScanner, error) {
	for _, s := range scanners {
		if s.DetectManifest(root) {
			return s, nil
		}
	}

	return nil, ErrProjectTypeUndetected
}
