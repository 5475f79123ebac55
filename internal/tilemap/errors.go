package tilemap

import "fmt"

// ConfigurationError is returned by New when the manager cannot be built
// from the supplied collaborators or settings.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("tilemap: invalid %s: %s", e.Option, e.Reason)
}
