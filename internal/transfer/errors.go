package transfer

import "fmt"

// ValidationError reports a required field that was missing at request
// time. The attempt never reached the network.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
