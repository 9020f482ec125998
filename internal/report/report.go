package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	scannermodels "github.com/RobsonDevCode/depwatch/internal/scanner/models"
)

// Report is the aggregate result of one scan, everything the renderers,
// exporters and exit code checks work from.
type Report struct {
	Project         scannermodels.ProjectInfo            `json:"project"`
	Timestamp       time.Time                            `json:"timestamp"`
	Dependencies    []scannermodels.Dependency           `json:"dependencies"`
	Outdated        []scannermodels.UpdateCandidate      `json:"outdated"`
	Vulnerabilities []scannermodels.VulnerabilityFinding `json:"vulnerabilities"`
	Recommendations []string                             `json:"recommendations"`
}

func Assemble(project scannermodels.ProjectInfo, dependencies []scannermodels.Dependency, outdated []scannermodels.UpdateCandidate, vulnerabilities []scannermodels.VulnerabilityFinding) *Report {
	if dependencies == nil {
		dependencies = []scannermodels.Dependency{}
	}
	if outdated == nil {
		outdated = []scannermodels.UpdateCandidate{}
	}
	if vulnerabilities == nil {
		vulnerabilities = []scannermodels.VulnerabilityFinding{}
	}

	result := &Report{
		Project:         project,
		Timestamp:       time.Now().UTC(),
		Dependencies:    dependencies,
		Outdated:        outdated,
		Vulnerabilities: vulnerabilities,
	}
	result.Recommendations = buildRecommendations(result)

	return result
}

func buildRecommendations(r *Report) []string {
	recommendations := []string{}

	distances := r.CountByDistance()
	severities := r.CountBySeverity()

	if safe := distances[scannermodels.DistancePatch] + distances[scannermodels.DistanceMinor]; safe > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d packages can be updated safely, run the fix command to apply them", safe))
	}
	if major := distances[scannermodels.DistanceMajor]; major > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d major updates need a manual review before upgrading", major))
	}
	if unknown := distances[scannermodels.DistanceUnknown]; unknown > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d packages report versions that could not be compared, check them by hand", unknown))
	}
	if critical := severities[scannermodels.SeverityCritical]; critical > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d critical vulnerabilities present, update the affected packages immediately", critical))
	} else if len(r.Vulnerabilities) > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d vulnerabilities found, review the reported findings", len(r.Vulnerabilities)))
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "All dependencies are up to date with no known vulnerabilities")
	}

	return recommendations
}

func (r *Report) CountByDistance() map[scannermodels.UpdateDistance]int {
	counts := make(map[scannermodels.UpdateDistance]int)
	for _, candidate := range r.Outdated {
		counts[candidate.Distance]++
	}

	return counts
}

func (r *Report) CountBySeverity() map[scannermodels.Severity]int {
	counts := make(map[scannermodels.Severity]int)
	for _, finding := range r.Vulnerabilities {
		counts[finding.Severity]++
	}

	return counts
}

// MaxSeverity returns the most severe finding in the report, or the empty
// string when there are no findings.
func (r *Report) MaxSeverity() scannermodels.Severity {
	var max scannermodels.Severity
	for _, finding := range r.Vulnerabilities {
		if finding.Severity.Rank() > max.Rank() {
			max = finding.Severity
		}
	}

	return max
}

// HasBlockingIssues reports whether the scan should fail the run under the
// caller's thresholds. An empty failOn severity disables the severity gate.
func (r *Report) HasBlockingIssues(failOn scannermodels.Severity, failOnOutdated bool) bool {
	if failOnOutdated && len(r.Outdated) > 0 {
		return true
	}
	if failOn != "" && r.MaxSeverity().Rank() >= failOn.Rank() && len(r.Vulnerabilities) > 0 {
		return true
	}

	return false
}

// WriteJSON writes the report as indented json. Html escaping is off so
// constraint strings like ">=2.1" stay readable in the output.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	return encoder.Encode(r)
}
