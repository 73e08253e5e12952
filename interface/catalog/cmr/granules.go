package cmr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/catalog"
	"github.com/ductran27/LIS-landsurface-toolkit/service"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"github.com/go-spatial/geom"
)

const (
	// SearchEndpoint is the NASA Common Metadata Repository granule search API
	SearchEndpoint   = "https://cmr.earthdata.nasa.gov/search/granules.json"
	dataLinkRel      = "http://esipfed.org/ns/fedsearch/1.1/data#"
	catalogPageLimit = 2000
)

// Provider implements catalog.GranuleProvider for the NASA CMR
type Provider struct {
	Endpoint string
	PageSize int
	creds    common.Credentials
}

// NewProvider creates a new GranuleProvider from the NASA CMR
func NewProvider(creds common.Credentials) *Provider {
	return &Provider{Endpoint: SearchEndpoint, PageSize: catalogPageLimit, creds: creds}
}

// Name implements GranuleProvider
func (p *Provider) Name() string {
	return "CMR"
}

// SearchGranules implements GranuleProvider
func (p *Provider) SearchGranules(ctx context.Context, query catalog.Query) ([]common.Granule, error) {
	// Construct query
	parameters := []string{
		"short_name=" + neturl.QueryEscape(query.Product),
		fmt.Sprintf("temporal=%s,%s",
			query.Dates.Start.Format("2006-01-02")+"T00:00:00Z",
			query.Dates.End.Format("2006-01-02")+"T23:59:59Z"),
		"sort_key=start_date",
	}

	// Append spatial constraint (polygon refines the bounding box when provided)
	if query.AOI != nil {
		ring, err := polygonRing(query.AOI.Geometry)
		if err != nil {
			return nil, catalog.ErrQuery{Catalog: p.Name(), Err: fmt.Errorf("SearchGranules: %w", err)}
		}
		parameters = append(parameters, "polygon="+ring)
	} else {
		parameters = append(parameters, "bounding_box="+neturl.QueryEscape(query.BBox.String()))
	}

	rawgranules, err := p.queryCMR(ctx, strings.Join(parameters, "&"))
	if err != nil {
		var unauthorized service.ErrUnauthorized
		if errors.As(err, &unauthorized) {
			return nil, catalog.ErrAuthentication{Reason: "rejected by " + p.Name(), Err: unauthorized.Err}
		}
		return nil, catalog.ErrQuery{Catalog: p.Name(), Err: err}
	}

	// Parse results
	granules := make([]common.Granule, 0, len(rawgranules))
	for _, raw := range rawgranules {
		granule := common.Granule{
			ID:      raw.ID,
			Name:    raw.ProducerGranuleID,
			Product: query.Product,
		}
		if granule.Name == "" {
			granule.Name = raw.Title
		}
		if raw.TimeStart != "" {
			if granule.TimeStart, err = time.Parse(time.RFC3339, raw.TimeStart); err != nil {
				return nil, catalog.ErrQuery{Catalog: p.Name(), Err: fmt.Errorf("SearchGranules.TimeParse: %w", err)}
			}
		}
		if raw.TimeEnd != "" {
			if granule.TimeEnd, err = time.Parse(time.RFC3339, raw.TimeEnd); err != nil {
				return nil, catalog.ErrQuery{Catalog: p.Name(), Err: fmt.Errorf("SearchGranules.TimeParse: %w", err)}
			}
		}
		// granule_size is advertised in megabytes
		if raw.GranuleSize != "" {
			if mb, err := strconv.ParseFloat(raw.GranuleSize, 64); err == nil {
				granule.Size = int64(mb * (1 << 20))
			}
		}
		if len(raw.Boxes) > 0 {
			granule.Coverage = parseBox(raw.Boxes[0])
		}
		for _, link := range raw.Links {
			if link.Rel == dataLinkRel && !link.Inherited {
				granule.DownloadURL = link.Href
				break
			}
		}
		if granule.DownloadURL == "" {
			log.Logger(ctx).Sugar().Warnf("[%s] granule %s has no download link, skipped", p.Name(), granule.Name)
			continue
		}
		granules = append(granules, granule)
	}

	return granules, nil
}

type cmrEntry struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	ProducerGranuleID string   `json:"producer_granule_id"`
	TimeStart         string   `json:"time_start"`
	TimeEnd           string   `json:"time_end"`
	GranuleSize       string   `json:"granule_size"`
	Boxes             []string `json:"boxes"`
	Links             []struct {
		Rel       string `json:"rel"`
		Href      string `json:"href"`
		Inherited bool   `json:"inherited"`
	} `json:"links"`
}

func (p *Provider) queryCMR(ctx context.Context, query string) ([]cmrEntry, error) {
	pageSize := p.PageSize
	if pageSize == 0 {
		pageSize = catalogPageLimit
	}

	// Pagging
	var rawgranules []cmrEntry
	for page := 1; ; page++ {
		log.Logger(ctx).Sugar().Debugf("[%s] Search page %d", p.Name(), page)

		url := p.Endpoint + "?" + query + fmt.Sprintf("&page_size=%d&page_num=%d", pageSize, page)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("queryCMR.NewRequest: %w", err)
		}
		service.SetAuth(req, p.creds.Username, p.creds.Password, p.creds.Token)
		jsonResults, err := service.GetBodyRetryReq(req, 3)
		if err != nil {
			var unauthorized service.ErrUnauthorized
			if errors.As(err, &unauthorized) {
				return nil, unauthorized
			}
			return nil, fmt.Errorf("queryCMR.GetBodyRetry: %w", err)
		}

		results := struct {
			Feed struct {
				Entry []cmrEntry `json:"entry"`
			} `json:"feed"`
		}{}
		if err := json.Unmarshal(jsonResults, &results); err != nil {
			return nil, fmt.Errorf("queryCMR.Unmarshal: %w (response: %s)", err, jsonResults)
		}

		rawgranules = append(rawgranules, results.Feed.Entry...)

		// Is there a next page ?
		if len(results.Feed.Entry) < pageSize {
			return rawgranules, nil
		}
	}
}

// polygonRing encodes the outer ring of a polygonal AOI as the
// "lon1,lat1,...,lonN,latN" counter-clockwise closed ring the CMR expects
func polygonRing(g geom.Geometry) (string, error) {
	var ring [][2]float64
	switch gg := g.(type) {
	case geom.Polygon:
		rings := gg.LinearRings()
		if len(rings) == 0 {
			return "", fmt.Errorf("empty polygon")
		}
		ring = rings[0]
	case geom.MultiPolygon:
		polygons := gg.Polygons()
		if len(polygons) != 1 || len(polygons[0]) == 0 {
			return "", fmt.Errorf("AOI must be a single polygon")
		}
		ring = polygons[0][0]
	default:
		return "", fmt.Errorf("AOI must be a polygon, got %T", g)
	}

	points := make([]string, 0, len(ring)+1)
	for _, pt := range ring {
		points = append(points, fmt.Sprintf("%g,%g", pt[0], pt[1]))
	}
	// Close the ring
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		points = append(points, fmt.Sprintf("%g,%g", ring[0][0], ring[0][1]))
	}
	return strings.Join(points, ","), nil
}

// parseBox parses the CMR "south west north east" box encoding
func parseBox(box string) *common.BoundingBox {
	fields := strings.Fields(box)
	if len(fields) != 4 {
		return nil
	}
	coords := [4]float64{}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		coords[i] = v
	}
	return &common.BoundingBox{South: coords[0], West: coords[1], North: coords[2], East: coords[3]}
}
