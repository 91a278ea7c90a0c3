package types

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every configuration error. Configuration
// errors are raised at construction time, never while iterating.
var ErrConfiguration = errors.New("configuration error")

// Domain errors
var (
	// Configuration
	ErrInvalidSettings        = fmt.Errorf("%w: invalid chunk settings", ErrConfiguration)
	ErrMissingCodePlaceholder = fmt.Errorf("%w: prompt template must contain {CODE}", ErrConfiguration)
	ErrMissingAPIKey          = fmt.Errorf("%w: API key is required", ErrConfiguration)

	// Cache store
	ErrStoreFailure     = errors.New("cache store failure")
	ErrUnknownNamespace = errors.New("unknown cache namespace")

	// Evaluation service
	ErrServiceUnavailable = errors.New("evaluation service unavailable")
)
