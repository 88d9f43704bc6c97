package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"

	"go-currency-converter/domain"
	"go-currency-converter/exchange"
)

// Reloader reloads rates from their source on demand
type Reloader interface {
	Refresh(ctx context.Context) error
}

// Server dependencies for HTTP Server functions
type Server struct {
	Service exchange.Service

	// Reloader optional, enables POST /api/rates/reload
	Reloader Reloader

	Logger log.Logger
	router *http.ServeMux
}

// NewServer constructs a Server with its routes registered. reloader may be nil.
func NewServer(s exchange.Service, reloader Reloader, logger log.Logger) *Server {
	server := &Server{
		Service:  s,
		Reloader: reloader,
		Logger:   logger,
		router:   http.NewServeMux(),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("POST /api/convert", s.convert())
	s.router.Handle("GET /api/rates", s.rates())
	s.router.Handle("PUT /api/rates", s.updateRates())
	s.router.Handle("DELETE /api/rates", s.clearRates())
	if s.Reloader != nil {
		s.router.Handle("POST /api/rates/reload", s.reloadRates())
	}
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// rate a single rate as rendered to clients
type rate struct {
	From domain.Currency `json:"from"`
	To   domain.Currency `json:"to"`
	Rate json.Number     `json:"rate"`
}

// number renders a decimal as a bare JSON number
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency domain.Currency
		ToCurrency   domain.Currency
		Amount       decimal.Decimal
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange json.Number `json:"exchange"`
		Amount   json.Number `json:"amount"`
		Original json.Number `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var request request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		result, err := s.Service.Convert(r.Context(), request.Amount, request.FromCurrency, request.ToCurrency)
		if err != nil {
			s.writeServiceError(rw, err)
			return
		}

		s.writeJSON(rw, http.StatusOK, response{
			Exchange: number(result.Rate),
			Amount:   number(result.Amount),
			Original: number(request.Amount),
		})
	}
}

// rates produces HTTP handler listing the active rates
func (s *Server) rates() http.HandlerFunc {
	type response struct {
		Version string     `json:"version,omitempty"`
		Created *time.Time `json:"created,omitempty"`
		Direct  int        `json:"direct"`
		Derived int        `json:"derived"`
		Rates   []rate     `json:"rates"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		table, err := s.Service.Rates(r.Context())
		if err != nil {
			s.writeServiceError(rw, err)
			return
		}

		rates := make([]rate, 0, table.Len())
		for _, pr := range table.Rates() {
			rates = append(rates, rate{From: pr.Pair.From, To: pr.Pair.To, Rate: number(pr.Rate)})
		}

		resp := response{
			Direct:  table.Direct,
			Derived: table.Derived(),
			Rates:   rates,
		}
		// cleared: no version to report, just an empty list
		if table.Configured() {
			resp.Version = table.Version.String()
			resp.Created = &table.Created
		}
		s.writeJSON(rw, http.StatusOK, resp)
	}
}

// updateRates produces HTTP handler replacing the configured rates
func (s *Server) updateRates() http.HandlerFunc {
	type request struct {
		Rates []domain.Quote `json:"rates"`
	}

	type response struct {
		Version string `json:"version"`
		Pairs   int    `json:"pairs"`
		Direct  int    `json:"direct"`
		Derived int    `json:"derived"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var request request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		table, err := s.Service.UpdateConfiguration(r.Context(), request.Rates)
		if err != nil {
			s.writeServiceError(rw, err)
			return
		}

		s.writeJSON(rw, http.StatusOK, response{
			Version: table.Version.String(),
			Pairs:   table.Len(),
			Direct:  table.Direct,
			Derived: table.Derived(),
		})
	}
}

// clearRates produces HTTP handler dropping the configured rates
func (s *Server) clearRates() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.Service.ClearConfiguration(r.Context())
		rw.WriteHeader(http.StatusNoContent)
	}
}

// reloadRates produces HTTP handler reloading rates from their source
func (s *Server) reloadRates() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if err := s.Reloader.Refresh(r.Context()); err != nil {
			s.Logger.Log("msg", "reload failed", "err", err)
			if domain.IsValidation(err) {
				s.writeError(rw, http.StatusUnprocessableEntity, err.Error())
				return
			}
			s.writeError(rw, http.StatusBadGateway, "reload failed")
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

// writeServiceError maps service errors to status codes
func (s *Server) writeServiceError(rw http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		s.writeError(rw, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateNotFound):
		s.writeError(rw, http.StatusNotFound, err.Error())
	default:
		s.Logger.Log("msg", "request failed", "err", err)
		s.writeError(rw, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(rw http.ResponseWriter, status int, msg string) {
	s.writeJSON(rw, status, struct {
		Error string `json:"error"`
	}{msg})
}

func (s *Server) writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		s.Logger.Log("msg", "failed json encoding", "err", err)
	}
}
