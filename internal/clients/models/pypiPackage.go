package models

type PypiPackageResponse struct {
	Info PypiPackageInfo `json:"info"`
}

type PypiPackageInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Summary  string `json:"summary"`
	HomePage string `json:"home_page"`
	License  string `json:"license"`
	Yanked   bool   `json:"yanked"`
}
