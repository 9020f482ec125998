package models

type OsvQuery struct {
	Package OsvQueryPackage `json:"package"`
	Version string          `json:"version,omitempty"`
}

type OsvQueryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type OsvQueryResponse struct {
	Vulns []OsvVulnerability `json:"vulns,omitempty"`
}

type OsvVulnerability struct {
	Id               string              `json:"id,omitempty"`
	Summary          string              `json:"summary,omitempty"`
	Details          string              `json:"details,omitempty"`
	Aliases          []string            `json:"aliases,omitempty"`
	Affected         []OsvAffected       `json:"affected,omitempty"`
	References       []OsvReference      `json:"references,omitempty"`
	DatabaseSpecific OsvDatabaseSpecific `json:"database_specific,omitempty"`
}

type OsvAffected struct {
	Package  OsvPackage `json:"package,omitempty"`
	Ranges   []OsvRange `json:"ranges,omitempty"`
	Versions []string   `json:"versions,omitempty"`
}

type OsvPackage struct {
	Ecosystem string `json:"ecosystem,omitempty"`
	Name      string `json:"name,omitempty"`
	Purl      string `json:"purl,omitempty"`
}

type OsvRange struct {
	Type   string     `json:"type,omitempty"`
	Events []OsvEvent `json:"events,omitempty"`
}

type OsvEvent struct {
	Introduced string `json:"introduced,omitempty"`
	Fixed      string `json:"fixed,omitempty"`
}

type OsvReference struct {
	Type string `json:"type,omitempty"`
	Url  string `json:"url,omitempty"`
}

type OsvDatabaseSpecific struct {
	Severity string `json:"severity,omitempty"`
}
