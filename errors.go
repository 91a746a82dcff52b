package ccpricing

import (
	"errors"
	"fmt"
)

// LoadError reports that an external collaborator (catalog, currency list,
// zone list) failed to deliver. It is confined to the component that issued
// the fetch and never affects the selection store.
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ccpricing: load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err as a LoadError for resource. A nil err stays nil.
func NewLoadError(resource string, err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Resource: resource, Err: err}
}

// IsLoadError reports whether err is, or wraps, a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
