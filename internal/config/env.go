package config

import "os"

// Default names of the credential variables.
const (
	EnvAgentID = "YOUCOM_AGENT_ID"
	EnvAPIKey  = "YOUCOM_API_KEY"
)

// Source resolves named settings. Implementations are read on every call and
// must not cache, so rotated credentials apply to the next invocation.
type Source interface {
	Lookup(key string) (string, bool)
}

// Environ reads the process environment.
type Environ struct{}

func (Environ) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// MapSource serves settings from a fixed map.
type MapSource map[string]string

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Present reports whether key resolves to a non-empty value.
func Present(src Source, key string) bool {
	v, ok := src.Lookup(key)
	return ok && v != ""
}
