package catalog

import (
	"context"
	"fmt"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/go-spatial/geom/encoding/geojson"
)

// Query scopes a granule search to a product, a spatial extent and a temporal window.
// BBox is mandatory; AOI optionally refines the search to a polygon.
type Query struct {
	Product string
	BBox    common.BoundingBox
	AOI     *geojson.Geometry
	Dates   common.DateRange
}

// GranuleProvider is the interface of a granule search service.
// Granules are returned in the order the remote service provides them;
// an empty result is a normal outcome, not an error.
type GranuleProvider interface {
	SearchGranules(ctx context.Context, query Query) ([]common.Granule, error)

	// Name of the catalog
	Name() string
}

// ErrAuthentication is an error returned when credentials are missing or rejected
type ErrAuthentication struct {
	Reason string
	Err    error
}

func (e ErrAuthentication) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e ErrAuthentication) Unwrap() error { return e.Err }

// ErrQuery is an error returned on catalog transport or service failure
type ErrQuery struct {
	Catalog string
	Err     error
}

func (e ErrQuery) Error() string {
	return fmt.Sprintf("catalog query failed [%s]: %v", e.Catalog, e.Err)
}

func (e ErrQuery) Unwrap() error { return e.Err }
