package public

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/langowen/converter/deploy/config"
	mwLogger "github.com/langowen/converter/internal/converter_api/ports/http/public/middleware/logger"
	"github.com/langowen/converter/internal/entities"
	"github.com/langowen/converter/pkg/converter"
	"github.com/langowen/converter/pkg/gateway"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net/http"
	"strconv"
)

var (
	errMissingParam = errors.New("missing query parameter")
	errBadAmount    = errors.New("amount is not a number")
	errBadLimit     = errors.New("limit is not an integer")
)

type Server struct {
	Server  *http.Server
	cfg     *config.Config
	service Service
}

func NewServer(server *http.Server, cfg *config.Config, service Service) *Server {
	return &Server{
		Server:  server,
		cfg:     cfg,
		service: service,
	}
}

// NewRouter mounts the converter routes and /metrics on a chi router.
func NewRouter(service Service, metrics http.Handler) chi.Router {
	s := &Server{service: service}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics)

	r.Get("/currencies", s.GetCurrencies)
	r.Get("/currencies/{code}", s.GetCurrencyValidity)
	r.Get("/convert", s.Convert)
	r.Get("/conversions", s.GetConversions)

	return r
}

func StartServer(ctx context.Context, service Service, cfg *config.Config) <-chan struct{} {
	serverConfig := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      NewRouter(service, nil),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	server := NewServer(serverConfig, cfg, service)

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

type currenciesResponse struct {
	Currencies []string `json:"currencies"`
}

type validityResponse struct {
	Code  string `json:"code"`
	Valid bool   `json:"valid"`
}

type conversionsResponse struct {
	Conversions []entities.Conversion `json:"conversions"`
}

func (s *Server) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	codes, err := s.service.Currencies(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, currenciesResponse{Currencies: codes})
}

func (s *Server) GetCurrencyValidity(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	valid, err := s.service.IsValid(r.Context(), code)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, validityResponse{Code: code, Valid: valid})
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	base := query.Get("base")
	quote := query.Get("quote")
	rawAmount := query.Get("amount")

	if base == "" || quote == "" || rawAmount == "" {
		RespondWithError(w, http.StatusBadRequest, errMissingParam.Error(), "base, quote and amount are required")
		return
	}

	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, errBadAmount.Error(), rawAmount)
		return
	}

	conversion, err := s.service.Convert(r.Context(), base, quote, amount)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, conversion)
}

func (s *Server) GetConversions(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, errBadLimit.Error(), raw)
			return
		}
		limit = n
	}

	conversions, err := s.service.History(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if conversions == nil {
		conversions = []entities.Conversion{}
	}

	RespondWithJSON(w, http.StatusOK, conversionsResponse{Conversions: conversions})
}

// StatusFor maps a service error onto the HTTP status returned to clients.
func StatusFor(err error) int {
	var (
		amountErr   *converter.InvalidAmountError
		currencyErr *converter.InvalidCurrencyError
		fetchErr    *converter.FetchError
		missingErr  *converter.MissingRateError
		malformed   *converter.MalformedResponseError
		networkErr  *gateway.NetworkError
	)

	switch {
	case errors.As(err, &amountErr), errors.As(err, &currencyErr), errors.Is(err, entities.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.As(err, &networkErr):
		if networkErr.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &fetchErr), errors.As(err, &missingErr), errors.As(err, &malformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)

	message := http.StatusText(status)
	if status != http.StatusInternalServerError {
		message = err.Error()
	} else {
		slog.Error("Request failed", "error", err)
	}

	RespondWithError(w, status, message)
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
