package server

import (
	"encoding/json"
	"net/http"

	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type WebServer struct {
	Index   *index.CatalogIndex
	Views   *ViewRegistry
	Source  storage.Source
	Limiter *rate.Limiter
	Logger  *zap.Logger
}

func NewWebServer(idx *index.CatalogIndex, views *ViewRegistry, source storage.Source, limiter *rate.Limiter, logger *zap.Logger) *WebServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebServer{
		Index:   idx,
		Views:   views,
		Source:  source,
		Limiter: limiter,
		Logger:  logger,
	}
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error

// Handler returns the routes of the catalog api. Everything below /api is
// rate limited, health and metrics are not.
func (ws *WebServer) Handler() http.Handler {
	api := http.NewServeMux()
	route := func(pattern string, fn handlerFunc) {
		api.Handle(pattern, counted(pattern, common.JsonHandler(ws.Logger, fn)))
	}
	route("GET /api/items", ws.Items)
	route("POST /api/items", ws.Items)
	route("GET /api/filters", ws.Filters)
	route("POST /api/views", ws.MountView)
	route("GET /api/views/{id}", ws.GetView)
	route("PATCH /api/views/{id}", ws.PatchView)
	route("POST /api/views/{id}/reset", ws.ResetView)
	route("DELETE /api/views/{id}", ws.UnmountView)
	route("POST /api/reload", ws.Reload)
	api.HandleFunc("OPTIONS /api/", common.RespondToOptions)

	mux := http.NewServeMux()
	mux.Handle("/api/", RateLimited(ws.Limiter, api))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
