package scannermodels

type UpdateDistance string

const (
	DistanceNone    UpdateDistance = "none"
	DistancePatch   UpdateDistance = "patch"
	DistanceMinor   UpdateDistance = "minor"
	DistanceMajor   UpdateDistance = "major"
	DistanceUnknown UpdateDistance = "unknown"
)

// Rank orders distances by how much attention an update needs, major bumps
// first. Unknown sorts last because we could not compare the versions.
func (d UpdateDistance) Rank() int {
	switch d {
	case DistanceMajor:
		return 3
	case DistanceMinor:
		return 2
	case DistancePatch:
		return 1
	default:
		return 0
	}
}

type UpdateCandidate struct {
	Name               string         `json:"name"`
	CurrentVersion     string         `json:"current"`
	DeclaredConstraint string         `json:"wanted"`
	LatestVersion      string         `json:"latest"`
	Kind               DependencyKind `json:"type"`
	Distance           UpdateDistance `json:"updateType"`
	Safe               bool           `json:"safe"`
	Breaking           bool           `json:"breaking"`
}

type LookupFailure struct {
	Name string
	Err  error
}
