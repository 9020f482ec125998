package supportedecosystems

const (
	Npm = "npm"
	Pip = "pip"
)
