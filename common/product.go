package common

import "fmt"

// ErrUnknownProduct is an error returned when a product code is not registered
type ErrUnknownProduct struct {
	Code string
}

func (e ErrUnknownProduct) Error() string {
	return fmt.Sprintf("unknown product: %s", e.Code)
}

// Product describes a satellite data product. It is static reference data,
// defined at process start and looked up by code.
type Product struct {
	Code               string `json:"code"`
	Description        string `json:"description"`
	SpatialResolution  string `json:"spatial_resolution"`
	TemporalResolution string `json:"temporal_resolution"`
	Platform           string `json:"platform"`
}
