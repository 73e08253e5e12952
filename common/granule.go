package common

import "time"

// Granule is one discrete remote data file matching a catalog query
// (one time step / tile of a product). It is created by a catalog provider
// and consumed by a file provider; it is not persisted.
type Granule struct {
	// ID is the catalog identifier of the granule
	ID string `json:"id"`
	// Name is the producer granule name (also the local file name)
	Name string `json:"name"`
	// Product is the code of the product this granule belongs to
	Product string `json:"product"`
	// DownloadURL is the direct link to the data file (https or ftp)
	DownloadURL string `json:"download_url"`
	// Size in bytes as advertised by the catalog (0 if unknown)
	Size int64 `json:"size,omitempty"`
	// Temporal coverage of the granule
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
	// Coverage is the spatial extent of the granule (nil if not provided by the catalog)
	Coverage *BoundingBox `json:"coverage,omitempty"`
}
