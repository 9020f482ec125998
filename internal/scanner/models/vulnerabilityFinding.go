package scannermodels

import "strings"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NormalizeSeverity maps feed specific severity labels onto the four levels
// we report on. Anything we don't recognise is treated as moderate rather
// than silently dropped.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityModerate
	case "low":
		return SeverityLow
	default:
		return SeverityModerate
	}
}

func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

type VulnerabilityFinding struct {
	PackageName   string   `json:"package"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Cve           string   `json:"cve,omitempty"`
	Url           string   `json:"url,omitempty"`
	AffectedRange string   `json:"range,omitempty"`
	FixedVersion  string   `json:"fixedIn,omitempty"`
	FixAvailable  bool     `json:"fixAvailable"`
}
