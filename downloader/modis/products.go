package modis

import "github.com/ductran27/LIS-landsurface-toolkit/common"

// Supported MODIS land products. Codes starting with MOD are acquired by
// Terra, MYD by Aqua, MCD by both combined.
var products = []common.Product{
	{Code: "MOD13A2", Description: "MODIS/Terra Vegetation Indices 16-Day L3 Global 1km", SpatialResolution: "1km", TemporalResolution: "16-day", Platform: "Terra"},
	{Code: "MOD13Q1", Description: "MODIS/Terra Vegetation Indices 16-Day L3 Global 250m", SpatialResolution: "250m", TemporalResolution: "16-day", Platform: "Terra"},
	{Code: "MYD13A2", Description: "MODIS/Aqua Vegetation Indices 16-Day L3 Global 1km", SpatialResolution: "1km", TemporalResolution: "16-day", Platform: "Aqua"},
	{Code: "MYD13Q1", Description: "MODIS/Aqua Vegetation Indices 16-Day L3 Global 250m", SpatialResolution: "250m", TemporalResolution: "16-day", Platform: "Aqua"},
	{Code: "MOD15A2H", Description: "MODIS/Terra Leaf Area Index/FPAR 8-Day L4 Global 500m", SpatialResolution: "500m", TemporalResolution: "8-day", Platform: "Terra"},
	{Code: "MYD15A2H", Description: "MODIS/Aqua Leaf Area Index/FPAR 8-Day L4 Global 500m", SpatialResolution: "500m", TemporalResolution: "8-day", Platform: "Aqua"},
	{Code: "MOD11A2", Description: "MODIS/Terra Land Surface Temperature/Emissivity 8-Day L3 Global 1km", SpatialResolution: "1km", TemporalResolution: "8-day", Platform: "Terra"},
	{Code: "MYD11A2", Description: "MODIS/Aqua Land Surface Temperature/Emissivity 8-Day L3 Global 1km", SpatialResolution: "1km", TemporalResolution: "8-day", Platform: "Aqua"},
	{Code: "MCD12Q1", Description: "MODIS/Terra+Aqua Land Cover Type Yearly L3 Global 500m", SpatialResolution: "500m", TemporalResolution: "yearly", Platform: "Terra+Aqua"},
	{Code: "MOD09A1", Description: "MODIS/Terra Surface Reflectance 8-Day L3 Global 500m", SpatialResolution: "500m", TemporalResolution: "8-day", Platform: "Terra"},
	{Code: "MYD09A1", Description: "MODIS/Aqua Surface Reflectance 8-Day L3 Global 500m", SpatialResolution: "500m", TemporalResolution: "8-day", Platform: "Aqua"},
}

var productsByCode = func() map[string]common.Product {
	m := make(map[string]common.Product, len(products))
	for _, p := range products {
		m[p.Code] = p
	}
	return m
}()
