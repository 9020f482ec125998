package npmscanner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/RobsonDevCode/depwatch/internal/clients"
	supportedecosystems "github.com/RobsonDevCode/depwatch/internal/constants/supportedEcosystems"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	npmmodels "github.com/RobsonDevCode/depwatch/internal/thirdPartyCommands/models/npm"
	npmcommands "github.com/RobsonDevCode/depwatch/internal/thirdPartyCommands/npmCommands"
	"github.com/sirupsen/logrus"
)

const manifestName = "package.json"

type manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type NpmScanner struct {
	registryClient clients.RegistryClientService
	logger         *logrus.Logger
}

func NewNpmScanner(registryClient clients.RegistryClientService, logger *logrus.Logger) *NpmScanner {
	return &NpmScanner{
		registryClient: registryClient,
		logger:         logger,
	}
}

func (s *NpmScanner) Ecosystem() string {
	return supportedecosystems.Npm
}

func (s *NpmScanner) DetectManifest(root string) bool {
	info, err := os.Stat(filepath.Join(root, manifestName))
	return err == nil && !info.IsDir()
}

func (s *NpmScanner) IdentifyProject(root string) (scannermodels.ProjectInfo, error) {
	manifestPath := filepath.Join(root, manifestName)
	parsed, err := s.readManifest(manifestPath)
	if err != nil {
		return scannermodels.ProjectInfo{}, err
	}

	info := scannermodels.ProjectInfo{
		Name:         parsed.Name,
		Version:      parsed.Version,
		Description:  parsed.Description,
		Ecosystem:    supportedecosystems.Npm,
		ManifestPath: manifestPath,
	}
	if info.Name == "" {
		info.Name = "unknown"
	}
	if info.Version == "" {
		info.Version = "0.0.0"
	}

	return info, nil
}

func (s *NpmScanner) ListDependencies(root string, opts scannermodels.ListOptions) ([]scannermodels.Dependency, error) {
	if opts.ProductionOnly && opts.DevelopmentOnly {
		return nil, scanner.ErrConflictingFilters
	}

	parsed, err := s.readManifest(filepath.Join(root, manifestName))
	if err != nil {
		return nil, err
	}

	var deps []scannermodels.Dependency
	if opts.WantsKind(scannermodels.KindProduction) {
		deps = append(deps, s.collectSection(parsed.Dependencies, scannermodels.KindProduction, root, opts)...)
	}
	if opts.WantsKind(scannermodels.KindDevelopment) {
		deps = append(deps, s.collectSection(parsed.DevDependencies, scannermodels.KindDevelopment, root, opts)...)
	}

	//manifest sections are maps so iteration order is random, sort to keep
	//repeated scans identical
	slices.SortFunc(deps, func(a, b scannermodels.Dependency) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(string(a.Kind), string(b.Kind))
	})

	return deps, nil
}

func (s *NpmScanner) ResolveLatestVersion(name string, ctx context.Context) (string, error) {
	return s.registryClient.GetLatestVersion(name, ctx)
}

func (s *NpmScanner) FetchPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error) {
	return s.registryClient.GetPackageMetadata(name, ctx)
}

func (s *NpmScanner) FindVulnerabilities(root string, deps []scannermodels.Dependency, ctx context.Context) []scannermodels.VulnerabilityFinding {
	logger := s.logger.WithField("operation", "npm_audit")

	auditResponse, err := npmcommands.RunAudit(root, ctx)
	if err != nil {
		logger.WithError(err).Debug("npm audit unavailable, skipping vulnerability check")
		return nil
	}

	declared := make(map[string]bool, len(deps))
	for _, dep := range deps {
		declared[dep.Name] = true
	}

	var findings []scannermodels.VulnerabilityFinding
	for name, vuln := range auditResponse.Vulnerabilities {
		if !declared[name] {
			continue
		}

		details, viaStrings := parseVia(vuln.Via)
		fixedVersion, fixAvailable := parseFixAvailable(vuln.FixAvailable)

		if len(details) == 0 {
			//advisories reached through deeper packages are reported against
			//those packages, not here
			if viaStrings > 0 {
				continue
			}

			findings = append(findings, scannermodels.VulnerabilityFinding{
				PackageName:   name,
				Severity:      scannermodels.NormalizeSeverity(vuln.Severity),
				AffectedRange: vuln.Range,
				FixedVersion:  fixedVersion,
				FixAvailable:  fixAvailable,
			})
			continue
		}

		for _, detail := range details {
			findings = append(findings, scannermodels.VulnerabilityFinding{
				PackageName:   name,
				Severity:      scannermodels.NormalizeSeverity(detail.Severity),
				Title:         detail.Title,
				Url:           detail.Url,
				AffectedRange: detail.Range,
				FixedVersion:  fixedVersion,
				FixAvailable:  fixAvailable,
			})
		}
	}

	slices.SortFunc(findings, func(a, b scannermodels.VulnerabilityFinding) int {
		if a.PackageName != b.PackageName {
			return strings.Compare(a.PackageName, b.PackageName)
		}
		return strings.Compare(a.Title, b.Title)
	})

	logger.WithField("finding_count", len(findings)).Debug("npm audit completed")
	return findings
}

func (s *NpmScanner) readManifest(manifestPath string) (*manifest, error) {
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &scanner.ManifestReadError{Path: manifestPath, Err: err}
	}

	var parsed manifest
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, &scanner.ManifestReadError{Path: manifestPath, Err: err}
	}

	return &parsed, nil
}

func (s *NpmScanner) collectSection(section map[string]string, kind scannermodels.DependencyKind, root string, opts scannermodels.ListOptions) []scannermodels.Dependency {
	var deps []scannermodels.Dependency
	for name, constraint := range section {
		if opts.Ignored(name) {
			continue
		}

		deps = append(deps, scannermodels.Dependency{
			Name:               name,
			DeclaredConstraint: constraint,
			InstalledVersion:   s.installedVersion(root, name),
			Kind:               kind,
		})
	}

	return deps
}

// installedVersion is best effort, projects that have never run npm install
// simply have no installed versions to read.
func (s *NpmScanner) installedVersion(root string, name string) string {
	content, err := os.ReadFile(filepath.Join(root, "node_modules", name, manifestName))
	if err != nil {
		return ""
	}

	var installed struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(content, &installed); err != nil {
		return ""
	}

	return installed.Version
}

func parseVia(via json.RawMessage) ([]npmmodels.NpmViaDetail, int) {
	var rawVia []json.RawMessage
	if err := json.Unmarshal(via, &rawVia); err != nil {
		return nil, 0
	}

	var details []npmmodels.NpmViaDetail
	viaStrings := 0
	for _, raw := range rawVia {
		var viaString string
		if err := json.Unmarshal(raw, &viaString); err == nil {
			viaStrings++
			continue
		}

		var detail npmmodels.NpmViaDetail
		if err := json.Unmarshal(raw, &detail); err == nil {
			details = append(details, detail)
		}
	}

	return details, viaStrings
}

func parseFixAvailable(raw json.RawMessage) (string, bool) {
	var available bool
	if err := json.Unmarshal(raw, &available); err == nil {
		return "", available
	}

	var fix npmmodels.NpmFixAvailable
	if err := json.Unmarshal(raw, &fix); err == nil {
		return fix.Version, true
	}

	return "", false
}
