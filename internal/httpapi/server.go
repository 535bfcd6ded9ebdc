// Package httpapi exposes the image pipeline and the beverage catalog over
// HTTP.
//
// Routes:
//
//	GET    /                     index page listing endpoints
//	POST   /api/cross            upload an image and draw a cross on it
//	GET    /artifacts/{name}     download a produced artifact
//	GET    /beverages/           list beverages (sort_by, order)
//	POST   /beverages/           create a beverage
//	GET    /beverages/{id}       read a beverage
//	PUT    /beverages/{id}       partially update a beverage
//	DELETE /beverages/{id}       delete a beverage
//	GET    /statistics/          min/max/avg for every numeric field
//	GET    /statistics/{field}   min/max/avg for one numeric field
//	GET    /statistics/chart     HTML bar chart of the statistics
//	GET    /healthz              liveness probe
//
// Errors are returned as {"error": "..."} with a 4xx or 5xx status.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/ironsheep/image-cross/internal/catalog"
	"github.com/ironsheep/image-cross/internal/logging"
	"github.com/ironsheep/image-cross/internal/pipeline"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// multipartOverhead is the body allowance on top of the image size limit for
// form fields and part headers.
const multipartOverhead = 1 << 20

// Options wires the server's collaborators.
type Options struct {
	Processor *pipeline.Processor
	Catalog   *catalog.Store
	Logger    *slog.Logger
}

// Server serves the HTTP API. Create one with New.
type Server struct {
	processor *pipeline.Processor
	catalog   *catalog.Store
	logger    *slog.Logger

	newRequestID idGenerator
}

// New creates a Server. A nil catalog is replaced by an empty one.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	store := opts.Catalog
	if store == nil {
		store, _ = catalog.NewStore()
	}
	return &Server{
		processor: opts.Processor,
		catalog:   store,
		logger:    logging.WithComponent(logger, "http"),
	}
}

// Handler returns the routed handler wrapped in request-id and access-log
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/cross", s.handleCross)
	mux.HandleFunc("GET /artifacts/{name}", s.handleArtifact)

	mux.HandleFunc("GET /beverages/{$}", s.handleListBeverages)
	mux.HandleFunc("POST /beverages/{$}", s.handleCreateBeverage)
	mux.HandleFunc("GET /beverages/{id}", s.handleGetBeverage)
	mux.HandleFunc("PUT /beverages/{id}", s.handleUpdateBeverage)
	mux.HandleFunc("DELETE /beverages/{id}", s.handleDeleteBeverage)

	mux.HandleFunc("GET /statistics/{$}", s.handleAllStatistics)
	mux.HandleFunc("GET /statistics/chart", s.handleStatisticsChart)
	mux.HandleFunc("GET /statistics/{field}", s.handleStatistics)

	var handler http.Handler = mux
	handler = logging.RequestLogger(s.logger)(handler)
	handler = requestIDMiddleware(s.newRequestID, handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>image-cross</title>
  <style>
    body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
    .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
  </style>
</head>
<body>
  <h1>image-cross</h1>
  <div class="info">
    <h2>Images</h2>
    <ul>
      <li><strong>POST /api/cross</strong> - upload an image (multipart field <code>image</code>) with <code>cross_type</code> and <code>r</code>, <code>g</code>, <code>b</code> or <code>color</code></li>
      <li><strong>GET /artifacts/&lt;name&gt;</strong> - download a produced image or histogram</li>
    </ul>
  </div>
  <div class="info">
    <h2>Beverages</h2>
    <ul>
      <li><strong>GET /beverages/</strong> - list beverages (sort_by, order)</li>
      <li><strong>POST /beverages/</strong> - add a beverage</li>
      <li><strong>GET /beverages/&lt;id&gt;</strong> - get a beverage</li>
      <li><strong>PUT /beverages/&lt;id&gt;</strong> - update a beverage</li>
      <li><strong>DELETE /beverages/&lt;id&gt;</strong> - delete a beverage</li>
      <li><strong>GET /statistics/</strong> - statistics for every numeric field</li>
      <li><strong>GET /statistics/&lt;field&gt;</strong> - statistics for volume, price or stock</li>
      <li><strong>GET /statistics/chart</strong> - statistics chart</li>
    </ul>
  </div>
</body>
</html>
`
