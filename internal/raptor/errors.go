package raptor

import "fmt"

// ConfigError reports an invalid request, caught before any search work
// begins. It is the typed error the routing core returns for malformed
// input, as opposed to the invariant-violation warnings logged during
// the search itself.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("raptor: invalid request field %q: %s", e.Field, e.Reason)
}
