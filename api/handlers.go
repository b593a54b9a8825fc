package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// options reads the analysis options from the query string, over the server defaults.
//
// Supported parameters: owner, range, open, dividends, conversion, tax_rate, strict.
func (s *Server) options(r *http.Request) (tradebook.Options, error) {
	opts := s.defaults
	opts.Today = s.today()
	q := r.URL.Query()

	if q.Has("owner") {
		opts.Owner = q.Get("owner")
	}
	if v := q.Get("range"); v != "" {
		p, err := date.ParsePreset(v)
		if err != nil {
			return opts, err
		}
		opts.Range = p
	}
	if v := q.Get("conversion"); v != "" {
		src, err := tradebook.ParseRateSource(v)
		if err != nil {
			return opts, err
		}
		opts.Conversion = src
	}
	for key, dst := range map[string]*bool{"open": &opts.IncludeOpen, "dividends": &opts.IncludeDividends, "strict": &opts.Strict} {
		if v := q.Get(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = b
		}
	}
	if v := q.Get("tax_rate"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 100 {
			return opts, fmt.Errorf("invalid tax_rate %q", v)
		}
		opts.TaxRate = tradebook.Percent(f)
	}
	return opts, nil
}

// run loads the transactions and analyzes them, writing the error response on failure.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*tradebook.Report, bool) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	txs, err := s.source.Transactions(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load transactions")
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	report, err := s.analyzer.Run(r.Context(), txs, opts)
	switch {
	case errors.Is(err, tradebook.ErrInvalidTransaction):
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return nil, false
	case errors.Is(err, tradebook.ErrRateUnavailable), errors.Is(err, tradebook.ErrPriceUnavailable):
		s.writeError(w, http.StatusBadGateway, err)
		return nil, false
	case err != nil:
		s.log.Error().Err(err).Msg("Analysis failed")
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return report, true
}

// respond wraps data with the report metadata.
func (s *Server) respond(w http.ResponseWriter, report *tradebook.Report, data any) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"metadata": map[string]any{
			"report":    report.ID,
			"options":   report.Options,
			"home":      report.Home,
			"rates":     report.Rates,
			"unpriced":  report.Unpriced,
			"errors":    report.Errors,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReport handles GET /api/report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, report)
	}
}

// handleOwners handles GET /api/owners
func (s *Server) handleOwners(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, map[string]any{
			"owners":     report.Owners,
			"earnings":   report.Earnings,
			"unrealized": report.Unrealized,
		})
	}
}

// handleCapital handles GET /api/capital
func (s *Server) handleCapital(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, map[string]any{
			"capital": report.Capital,
			"return":  report.Return,
			"tax":     report.Tax,
		})
	}
}

// handleCurve handles GET /api/curve
func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, map[string]any{
			"daily":    report.Daily,
			"curve":    report.Curve,
			"positive": report.Positive,
			"negative": report.Negative,
		})
	}
}

// handleBreakdown handles GET /api/breakdown
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, map[string]any{
			"best":     report.Best,
			"worst":    report.Worst,
			"by_stock": report.ByStock,
			"heatmap":  report.Heatmap,
		})
	}
}

// handleIncome handles GET /api/income
func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, map[string]any{
			"income": report.Income,
			"tax":    report.Tax,
		})
	}
}

// handleTransactions handles GET /api/transactions
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.run(w, r); ok {
		s.respond(w, report, report.Rows)
	}
}

// handleAdd handles POST /api/transactions
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var t tradebook.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid transaction: %w", err))
		return
	}
	id, err := s.source.Add(r.Context(), t)
	if errors.Is(err, tradebook.ErrInvalidTransaction) {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to add transaction")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	t.ID = id
	s.writeJSON(w, http.StatusCreated, map[string]any{"data": t})
}

// closeRequest is the body of POST /api/transactions/{id}/close.
type closeRequest struct {
	Date      date.Date           `json:"date"`
	Price     decimal.Decimal     `json:"price"`
	Quantity  decimal.NullDecimal `json:"quantity"` // defaults to the bought quantity
	Dividends decimal.Decimal     `json:"dividends"`
}

// handleClose handles POST /api/transactions/{id}/close
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid id: %w", err))
		return
	}
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid close request: %w", err))
		return
	}
	if req.Date.IsZero() {
		req.Date = s.today()
	}
	t, err := s.source.Close(r.Context(), id, req.Date, req.Price, req.Quantity.Decimal, req.Dividends)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, tradebook.ErrInvalidTransaction):
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		s.log.Error().Err(err).Int64("id", id).Msg("Failed to close transaction")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
