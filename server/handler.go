package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/downloader"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/catalog"
	"github.com/ductran27/LIS-landsurface-toolkit/service/log"
	"github.com/gorilla/mux"
)

// Handler exposes the downloader operations over HTTP
type Handler struct {
	Downloader downloader.Downloader
	Catalog    catalog.GranuleProvider
}

// New creates a Handler
func New(dl downloader.Downloader, cat catalog.GranuleProvider) *Handler {
	return &Handler{Downloader: dl, Catalog: cat}
}

// AddHandler registers the routes
func (h *Handler) AddHandler(r *mux.Router) {
	r.HandleFunc("/products", h.ListProductsHandler).Methods("GET")
	r.HandleFunc("/products/{code}", h.ProductInfoHandler).Methods("GET")
	r.HandleFunc("/granules", h.SearchGranulesHandler).Methods("GET")
	r.HandleFunc("/downloads", h.DownloadHandler).Methods("POST")
}

// ListProductsHandler returns the registered products
func (h *Handler) ListProductsHandler(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, h.Downloader.ListProducts())
}

// ProductInfoHandler returns the descriptor of one product
func (h *Handler) ProductInfoHandler(w http.ResponseWriter, req *http.Request) {
	product, err := h.Downloader.GetProductInfo(mux.Vars(req)["code"])
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, product)
}

// SearchGranulesHandler queries the catalog without downloading.
// Query parameters: product, bbox (west,south,east,north), start_date, end_date.
func (h *Handler) SearchGranulesHandler(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	bbox, err := common.ParseBoundingBox(q.Get("bbox"))
	if err != nil {
		writeError(w, req, err)
		return
	}
	dates, err := common.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, req, err)
		return
	}
	product := q.Get("product")
	if _, err := h.Downloader.GetProductInfo(product); err != nil {
		writeError(w, req, err)
		return
	}

	granules, err := h.Catalog.SearchGranules(req.Context(), catalog.Query{Product: product, BBox: bbox, Dates: dates})
	if err != nil {
		writeError(w, req, err)
		return
	}
	if granules == nil {
		granules = []common.Granule{}
	}
	writeJSON(w, granules)
}

// DownloadRequest is the body of POST /downloads
type DownloadRequest struct {
	Product   string             `json:"product"`
	BBox      common.BoundingBox `json:"bbox"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	OutputDir string             `json:"output_dir,omitempty"`
	MaxFiles  int                `json:"max_files,omitempty"`
	Overwrite bool               `json:"overwrite,omitempty"`
	Workers   int                `json:"workers,omitempty"`
}

// DownloadHandler runs a bulk download and returns the report
func (h *Handler) DownloadHandler(w http.ResponseWriter, req *http.Request) {
	request := DownloadRequest{}
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "invalid request body: %v", err)
		return
	}

	result, err := h.Downloader.DownloadProduct(req.Context(), request.Product, request.BBox,
		request.StartDate, request.EndDate, downloader.Options{
			OutputDir:   request.OutputDir,
			MaxFiles:    request.MaxFiles,
			Overwrite:   request.Overwrite,
			Concurrency: request.Workers,
		})
	if err != nil {
		writeError(w, req, err)
		return
	}
	if result.Paths == nil {
		result.Paths = []string{}
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, req *http.Request, err error) {
	var status int
	switch {
	case errors.As(err, &common.ErrInvalidBoundingBox{}), errors.As(err, &common.ErrInvalidDateRange{}),
		errors.As(err, &common.ErrUnknownProduct{}):
		status = 400
	case errors.As(err, &catalog.ErrAuthentication{}):
		status = 401
	case errors.As(err, &catalog.ErrQuery{}):
		status = 502
	default:
		status = 500
	}
	log.Logger(req.Context()).Sugar().Warnf("%s %s: %v", req.Method, req.URL.Path, err)
	w.WriteHeader(status)
	fmt.Fprintf(w, "%v", err)
}
