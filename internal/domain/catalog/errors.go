package catalog

import "errors"

// ErrPlanNotFound indicates a plan referenced by state or configuration does
// not exist in the catalog. This is a configuration error and must surface
// as a server-side failure, never be silently defaulted past the catalog.
var ErrPlanNotFound = errors.New("plan not found in catalog")
