package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when the stall counter exceeds the cycle budget.
	ErrExhausted = errors.New("generation exhausted")

	// ErrInvalidOptions wraps every option validation failure.
	ErrInvalidOptions = errors.New("invalid generator options")

	// ErrMalformedCatalog wraps every catalog validation failure.
	ErrMalformedCatalog = errors.New("malformed mutation catalog")
)

// ExhaustedError carries the progress a run made before it stalled out.
type ExhaustedError struct {
	ModuleCount int
	Target      int
	Stall       int
	Budget      int
	Iterations  int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted: module count %d of target %d unchanged for %d checks (budget %d) after %d iterations",
		e.ModuleCount, e.Target, e.Stall, e.Budget, e.Iterations)
}

// Is reports ErrExhausted as a match.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}
