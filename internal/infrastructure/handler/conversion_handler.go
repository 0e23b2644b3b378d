// Package handler internal/infrastructure/handler/conversion_handler.go
package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/damon-houk/satsval/internal/application/service"
	"github.com/damon-houk/satsval/internal/domain/currency"
	"github.com/damon-houk/satsval/internal/infrastructure/logger"
	"github.com/damon-houk/satsval/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

const pageTitle = "SATSVAL"

type pageData struct {
	Title  string
	Result *service.ConversionResult
}

// ConversionHandler serves the converter page and the conversion API
type ConversionHandler struct {
	service   *service.ConversionService
	templates *template.Template
	logger    logger.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service:   service,
		templates: pageTemplates,
		logger:    log,
	}
}

// Page renders the converter seeded with one BTC at the current rate
func (h *ConversionHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html.tmpl", pageData{
		Title:  pageTitle,
		Result: h.service.Landing(r.Context()),
	})
}

// ConvertForm handles a submitted amount. HTMX requests get only the
// values fragment back; plain form posts get the whole page.
func (h *ConversionHandler) ConvertForm(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Invalid form body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Convert(r.Context(), r.PostFormValue("amount"), r.PostFormValue("currency"))
	if err != nil {
		h.logger.Debug("Rejected form conversion", map[string]interface{}{
			"request_id": requestID,
			"currency":   r.PostFormValue("currency"),
			"error":      err.Error(),
		})
		http.Error(w, "Unsupported currency", http.StatusBadRequest)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		h.render(w, r, http.StatusOK, "values", result)
		return
	}
	h.render(w, r, http.StatusOK, "index.html.tmpl", pageData{Title: pageTitle, Result: result})
}

// ConvertJSON handles GET /api/convert?amount=&currency=
func (h *ConversionHandler) ConvertJSON(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	query := r.URL.Query()
	code := query.Get("currency")
	if code == "" {
		h.logger.Warn("Missing currency parameter", map[string]interface{}{
			"request_id": requestID,
		})
		sendErrorResponse(w, h.logger, "Missing currency parameter",
			"The 'currency' query parameter is required (BTC or USD)", http.StatusBadRequest, requestID)
		return
	}

	result, err := h.service.Convert(r.Context(), query.Get("amount"), code)
	if err != nil {
		if errors.Is(err, currency.ErrUnsupportedCurrency) {
			sendErrorResponse(w, h.logger, "Unsupported currency",
				"Only BTC and USD are supported", http.StatusBadRequest, requestID)
			return
		}
		h.logger.Error("Unexpected error in conversion handler", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
		return
	}

	sendJSON(w, http.StatusOK, ConvertResponse{
		BTC:      result.BTC,
		USD:      result.USD,
		Currency: result.Currency.String(),
		Rate:     result.Rate,
	})
}

// Rate handles GET /api/rate
func (h *ConversionHandler) Rate(w http.ResponseWriter, r *http.Request) {
	quote := h.service.CurrentRate(r.Context())

	resp := RateResponse{
		Rate:  quote.Rate,
		Stale: quote.Stale,
	}
	if !quote.FetchedAt.IsZero() {
		resp.FetchedAt = quote.FetchedAt.UTC().Format(time.RFC3339)
	}

	sendJSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Page).Methods(http.MethodGet)
	router.HandleFunc("/convert", h.ConvertForm).Methods(http.MethodPost)
	router.HandleFunc("/api/convert", h.ConvertJSON).Methods(http.MethodGet)
	router.HandleFunc("/api/rate", h.Rate).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(staticHandler(http.HandlerFunc(h.notFound))).Methods(http.MethodGet)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /",
			"POST /convert",
			"GET /api/convert",
			"GET /api/rate",
			"GET /static/",
		},
	})
}

func (h *ConversionHandler) notFound(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, h.logger, "Not found", "", http.StatusNotFound, middleware.GetRequestID(r.Context()))
}

func (h *ConversionHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Failed to render template", map[string]interface{}{
			"request_id": middleware.GetRequestID(r.Context()),
			"template":   name,
			"error":      err.Error(),
		})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
