package pipscanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/RobsonDevCode/depwatch/internal/clients"
	clientmodels "github.com/RobsonDevCode/depwatch/internal/clients/models"
	supportedecosystems "github.com/RobsonDevCode/depwatch/internal/constants/supportedEcosystems"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
	"github.com/sirupsen/logrus"
)

const (
	productionManifest  = "requirements.txt"
	developmentManifest = "requirements-dev.txt"
	osvEcosystem        = "PyPI"
)

type PipScanner struct {
	registryClient clients.RegistryClientService
	osvClient      clients.OsvClientService
	logger         *logrus.Logger
}

func NewPipScanner(registryClient clients.RegistryClientService, osvClient clients.OsvClientService, logger *logrus.Logger) *PipScanner {
	return &PipScanner{
		registryClient: registryClient,
		osvClient:      osvClient,
		logger:         logger,
	}
}

func (s *PipScanner) Ecosystem() string {
	return supportedecosystems.Pip
}

func (s *PipScanner) DetectManifest(root string) bool {
	info, err := os.Stat(filepath.Join(root, productionManifest))
	return err == nil && !info.IsDir()
}

// IdentifyProject has little to work with, requirements files carry no
// project metadata, so the directory name stands in for the project name.
func (s *PipScanner) IdentifyProject(root string) (scannermodels.ProjectInfo, error) {
	manifestPath := filepath.Join(root, productionManifest)
	if _, err := os.ReadFile(manifestPath); err != nil {
		return scannermodels.ProjectInfo{}, &scanner.ManifestReadError{Path: manifestPath, Err: err}
	}

	name := "unknown"
	if absRoot, err := filepath.Abs(root); err == nil {
		name = filepath.Base(absRoot)
	}

	return scannermodels.ProjectInfo{
		Name:         name,
		Version:      "0.0.0",
		Ecosystem:    supportedecosystems.Pip,
		ManifestPath: manifestPath,
	}, nil
}

func (s *PipScanner) ListDependencies(root string, opts scannermodels.ListOptions) ([]scannermodels.Dependency, error) {
	if opts.ProductionOnly && opts.DevelopmentOnly {
		return nil, scanner.ErrConflictingFilters
	}

	var deps []scannermodels.Dependency
	if opts.WantsKind(scannermodels.KindProduction) {
		entries, err := s.readRequirements(filepath.Join(root, productionManifest), false)
		if err != nil {
			return nil, err
		}
		deps = append(deps, collectEntries(entries, scannermodels.KindProduction, opts)...)
	}

	if opts.WantsKind(scannermodels.KindDevelopment) {
		entries, err := s.readRequirements(filepath.Join(root, developmentManifest), true)
		if err != nil {
			return nil, err
		}
		deps = append(deps, collectEntries(entries, scannermodels.KindDevelopment, opts)...)
	}

	return deps, nil
}

func (s *PipScanner) ResolveLatestVersion(name string, ctx context.Context) (string, error) {
	return s.registryClient.GetLatestVersion(name, ctx)
}

func (s *PipScanner) FetchPackageMetadata(name string, ctx context.Context) (*scannermodels.PackageMetadata, error) {
	return s.registryClient.GetPackageMetadata(name, ctx)
}

func (s *PipScanner) FindVulnerabilities(root string, deps []scannermodels.Dependency, ctx context.Context) []scannermodels.VulnerabilityFinding {
	logger := s.logger.WithField("operation", "osv_query")

	// Use semaphore to limit concurrent feed calls
	semaphore := make(chan struct{}, 4)
	var wg sync.WaitGroup
	var mu sync.Mutex

	var findings []scannermodels.VulnerabilityFinding
	seen := make(map[string]bool)

	for _, dep := range deps {
		_, version := scanner.SplitConstraint(dep.DeclaredConstraint)
		if version == "" {
			//nothing pinned means nothing we can ask the feed about
			continue
		}

		wg.Add(1)
		go func(name string, version string) {
			defer wg.Done()

			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			vulns, err := s.osvClient.QueryVulnerabilities(name, osvEcosystem, version, ctx)
			if err != nil {
				logger.WithError(err).WithField("package", name).Debug("Vulnerability lookup failed, skipping package")
				return
			}

			mu.Lock()
			for _, vuln := range vulns {
				key := name + "|" + vuln.Id
				if seen[key] {
					continue
				}
				seen[key] = true
				findings = append(findings, mapOsvFinding(name, vuln))
			}
			mu.Unlock()
		}(dep.Name, version)
	}

	wg.Wait()

	slices.SortFunc(findings, func(a, b scannermodels.VulnerabilityFinding) int {
		if a.PackageName != b.PackageName {
			return strings.Compare(a.PackageName, b.PackageName)
		}
		return strings.Compare(a.Title, b.Title)
	})

	logger.WithField("finding_count", len(findings)).Debug("Vulnerability scan completed")
	return findings
}

func (s *PipScanner) readRequirements(path string, optional bool) ([]requirementEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &scanner.ManifestReadError{Path: path, Err: err}
	}

	var entries []requirementEntry
	for _, line := range strings.Split(string(content), "\n") {
		entry, ok := parseRequirement(line)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func collectEntries(entries []requirementEntry, kind scannermodels.DependencyKind, opts scannermodels.ListOptions) []scannermodels.Dependency {
	var deps []scannermodels.Dependency
	for _, entry := range entries {
		if opts.Ignored(entry.name) {
			continue
		}

		deps = append(deps, scannermodels.Dependency{
			Name:               entry.name,
			DeclaredConstraint: entry.constraint,
			Kind:               kind,
		})
	}

	return deps
}

func mapOsvFinding(name string, vuln clientmodels.OsvVulnerability) scannermodels.VulnerabilityFinding {
	finding := scannermodels.VulnerabilityFinding{
		PackageName: name,
		Severity:    scannermodels.NormalizeSeverity(vuln.DatabaseSpecific.Severity),
		Title:       vuln.Summary,
		Cve:         firstCveAlias(vuln.Aliases),
		Url:         advisoryUrl(vuln.References),
	}

	introduced, fixed := affectedRange(name, vuln.Affected)
	finding.AffectedRange = formatRange(introduced, fixed)
	finding.FixedVersion = fixed
	finding.FixAvailable = fixed != ""

	return finding
}

func firstCveAlias(aliases []string) string {
	for _, alias := range aliases {
		if strings.HasPrefix(alias, "CVE-") {
			return alias
		}
	}

	return ""
}

func advisoryUrl(references []clientmodels.OsvReference) string {
	for _, reference := range references {
		if reference.Type == "ADVISORY" {
			return reference.Url
		}
	}

	if len(references) > 0 {
		return references[0].Url
	}

	return ""
}

func affectedRange(name string, affected []clientmodels.OsvAffected) (string, string) {
	for _, entry := range affected {
		if entry.Package.Name != "" && !strings.EqualFold(entry.Package.Name, name) {
			continue
		}

		for _, affectedRange := range entry.Ranges {
			if affectedRange.Type != "ECOSYSTEM" && affectedRange.Type != "SEMVER" {
				continue
			}

			var introduced, fixed string
			for _, event := range affectedRange.Events {
				if event.Introduced != "" {
					introduced = event.Introduced
				}
				if event.Fixed != "" {
					fixed = event.Fixed
				}
			}

			return introduced, fixed
		}
	}

	return "", ""
}

func formatRange(introduced string, fixed string) string {
	if introduced == "" && fixed == "" {
		return ""
	}
	if fixed == "" {
		return fmt.Sprintf(">=%s", introduced)
	}
	if introduced == "" || introduced == "0" {
		return fmt.Sprintf("<%s", fixed)
	}

	return fmt.Sprintf(">=%s <%s", introduced, fixed)
}
