package config

const (
	DefaultTimeout      = 30
	DefaultMemory       = 128
	DefaultRuntime      = "provided.al2"
	DefaultHandler      = "bootstrap"
	DefaultArchitecture = "x86_64"
)

// Lambda configuration.
type Lambda struct {
	Runtime      string `json:"runtime"`
	Timeout      int    `json:"timeout"`
	Role         string `json:"role"`
	Memory       int    `json:"memory"`
	Handler      string `json:"handler"`
	Architecture string `json:"architecture"`
}

func (l *Lambda) Defaults() {
	if l.Memory == 0 {
		l.Memory = DefaultMemory
	}

	if l.Timeout == 0 {
		l.Timeout = DefaultTimeout
	}

	if l.Runtime == "" {
		l.Runtime = DefaultRuntime
	}

	if l.Handler == "" {
		l.Handler = DefaultHandler
	}

	if l.Architecture == "" {
		l.Architecture = DefaultArchitecture
	}
}
