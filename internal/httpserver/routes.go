package httpserver

import (
	"github.com/mediagate/mediagate/internal/delivery"
	"github.com/mediagate/mediagate/internal/httpserver/handlers"
	"github.com/mediagate/mediagate/internal/status"
	"github.com/mediagate/mediagate/pkg/httpclient"
)

// Routes bundles every handler Server.Mount wires into the router. Extract
// and delivery are plain http.Handlers (their envelopes diverge from huma's
// generic error model); status and circuit-breakers are huma operations;
// docs and changelog are static reads.
type Routes struct {
	Extract         *handlers.ExtractHandler
	Delivery        *delivery.Handler
	Status          *status.Handler
	CircuitBreakers *httpclient.CircuitBreakerManager
	Docs            *handlers.DocsHandler
	Changelog       *handlers.ChangelogHandler
}

// Mount registers every route named in Routes against the server's chi
// router and huma API. It is the single place request paths are spelled
// out, matching the teacher's habit of keeping routing in one file distinct
// from handler construction.
func (s *Server) Mount(routes Routes) {
	r := s.Router()

	r.Post("/extract", routes.Extract.ServeHTTP)

	r.Get("/stream", routes.Delivery.ServeStream)
	r.Get("/download", routes.Delivery.ServeDownload)
	r.Get("/thumbnail", routes.Delivery.ServeThumbnail)
	r.Get("/hls-proxy", routes.Delivery.ServeHLSProxy)
	r.Get("/hls-stream", routes.Delivery.ServeHLSStream)
	r.Get("/merge", routes.Delivery.ServeMerge)

	r.Get("/changelog", routes.Changelog.ServeHTTP)
	r.Get("/docs", routes.Docs.ServeHTTP)

	routes.Status.Register(s.API())
	handlers.NewCircuitBreakerHandler(routes.CircuitBreakers).Register(s.API())
}
