package scannermodels

type ProjectInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Description  string `json:"description,omitempty"`
	Ecosystem    string `json:"ecosystem"`
	ManifestPath string `json:"manifest"`
}
