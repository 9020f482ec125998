package scannermodels

type DependencyKind string

const (
	KindProduction  DependencyKind = "production"
	KindDevelopment DependencyKind = "development"
)

type Dependency struct {
	Name               string         `json:"name"`
	DeclaredConstraint string         `json:"constraint"`
	InstalledVersion   string         `json:"installed,omitempty"`
	Kind               DependencyKind `json:"type"`
}

type ListOptions struct {
	Ignore          []string
	ProductionOnly  bool
	DevelopmentOnly bool
}

func (o ListOptions) Ignored(name string) bool {
	for _, ignored := range o.Ignore {
		if ignored == name {
			return true
		}
	}
	return false
}

func (o ListOptions) WantsKind(kind DependencyKind) bool {
	if o.ProductionOnly {
		return kind == KindProduction
	}
	if o.DevelopmentOnly {
		return kind == KindDevelopment
	}
	return true
}
