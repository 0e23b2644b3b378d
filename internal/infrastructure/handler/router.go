package handler

import (
	"net/http"

	"github.com/damon-houk/satsval/internal/infrastructure/logger"
	"github.com/damon-houk/satsval/internal/infrastructure/metrics"
	"github.com/damon-houk/satsval/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires the conversion routes, health and metrics endpoints
// behind the request ID, logging and metrics middleware
func NewRouter(conversion *ConversionHandler, m *metrics.Metrics, log logger.Logger) *mux.Router {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	chain := []mux.MiddlewareFunc{
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.MetricsMiddleware(m),
	}

	router := mux.NewRouter()
	router.Use(chain...)

	conversion.RegisterRoutes(router)
	router.HandleFunc("/healthz", health).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	var notFound http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendErrorResponse(w, log, "Not found", "", http.StatusNotFound, middleware.GetRequestID(r.Context()))
	})
	for i := len(chain) - 1; i >= 0; i-- {
		notFound = chain[i](notFound)
	}
	router.NotFoundHandler = notFound

	return router
}

func health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
