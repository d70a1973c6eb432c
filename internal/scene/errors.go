package scene

import (
	"errors"
	"fmt"
)

var (
	ErrResource   = errors.New("scene: resource unavailable")
	errNoRenderer = errors.New("no renderer")
)

// ResourceError reports a missing renderer or an asset it could not load.
// Startup stops at the first one.
type ResourceError struct {
	Asset string
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("scene: load %s: %v", e.Asset, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{ErrResource, e.Err}
}
