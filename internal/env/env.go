package env

import (
	"os"
	"strings"

	"github.com/LSeu-Open/bg-atlasapi/internal/envvar"
)

// Environment is the runtime environment the process runs in.
type Environment string

const (
	// Development enables colored, human friendly logs.
	Development Environment = "development"

	// Production emits JSON logs.
	Production Environment = "production"

	// Test silences most output.
	Test Environment = "test"
)

// FromEnv reads the environment from BGATLAS_ENV, defaulting to Development.
func FromEnv() Environment {
	return Parse(os.Getenv(envvar.BgatlasEnv))
}

// Parse converts a string into an Environment. Unknown values map to Development.
func Parse(s string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case Production, "prod":
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
