package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingToken  = fmt.Errorf("missing catalog token")

	// Catalog and provider errors
	ErrCatalogUnavailable = fmt.Errorf("catalog unavailable")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Curation errors
	ErrNothingToCurate = fmt.Errorf("nothing to curate")
	ErrRunNotFound     = fmt.Errorf("curation run not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
