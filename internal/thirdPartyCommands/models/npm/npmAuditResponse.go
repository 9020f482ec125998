package npmmodels

import "encoding/json"

type NpmAuditResponse struct {
	Vulnerabilities map[string]NpmAuditVulnerability `json:"vulnerabilities"`
}

type NpmAuditVulnerability struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	//via holds advisory objects for the package itself and plain strings for
	//vulnerabilities inherited from its own dependencies
	Via      json.RawMessage `json:"via"`
	IsDirect bool            `json:"isDirect"`
	Range    string          `json:"range"`
	//fixAvailable is either a bool or an object naming the fixed version
	FixAvailable json.RawMessage `json:"fixAvailable"`
}

type NpmViaDetail struct {
	Source     interface{} `json:"source"`
	Name       string      `json:"name"`
	Dependency string      `json:"dependency"`
	Title      string      `json:"title"`
	Url        string      `json:"url"`
	Severity   string      `json:"severity"`
	Range      string      `json:"range"`
}

type NpmFixAvailable struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	IsSemVerMajor bool   `json:"isSemVerMajor"`
}
