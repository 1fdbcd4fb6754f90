package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/property-calc/internal/cache"
	"github.com/iwvelando/property-calc/internal/config"
	"github.com/iwvelando/property-calc/internal/leads"
	"github.com/iwvelando/property-calc/internal/metrics"
	"github.com/iwvelando/property-calc/pkg/calc"
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/datetime"
	"github.com/iwvelando/property-calc/pkg/validation"
	"go.uber.org/zap"
)

// Options wires the handler's collaborators. Zero values fall back to
// defaults: no cache, no rate limiting, the default policy and tax table.
type Options struct {
	Logger      *zap.Logger
	MaxBodySize int64
	Version     string

	Borrowing calc.BorrowingPolicy
	TaxTable  calc.TaxTable

	Cache    cache.Cache
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
	Leads    *leads.Service
	Limiter  *RateLimiter

	// Now is the clock used for payoff dates when a request has no asOf.
	Now func() time.Time
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	borrowing   calc.BorrowingPolicy
	taxTable    calc.TaxTable
	cache       cache.Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	leads       *leads.Service
	limiter     *RateLimiter
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculation API.
func NewHandler(opts Options) http.Handler {
	h := &handler{
		logger:      opts.Logger,
		maxBodySize: opts.MaxBodySize,
		version:     strings.TrimSpace(opts.Version),
		borrowing:   opts.Borrowing,
		taxTable:    opts.TaxTable,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		metrics:     opts.Metrics,
		leads:       opts.Leads,
		limiter:     opts.Limiter,
		now:         opts.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}
	if h.borrowing == (calc.BorrowingPolicy{}) {
		h.borrowing = calc.DefaultBorrowingPolicy()
	}
	if len(h.taxTable) == 0 {
		h.taxTable = calc.DefaultTaxTable()
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.leads == nil {
		h.leads = leads.NewService(nil, h.logger)
	}
	if h.now == nil {
		h.now = time.Now
	}

	mux := http.NewServeMux()

	// Calculation endpoints
	h.handle(mux, "/api/mortgage", "mortgage", http.MethodPost, h.handleMortgage)
	h.handle(mux, "/api/mortgage/schedule", "schedule", http.MethodPost, h.handleSchedule)
	h.handle(mux, "/api/borrowing", "borrowing", http.MethodPost, h.handleBorrowing)
	h.handle(mux, "/api/tax", "tax", http.MethodPost, h.handleTax)
	h.handle(mux, "/api/tax/brackets", "tax_brackets", http.MethodGet, h.handleTaxBrackets)
	h.handle(mux, "/api/household", "household", http.MethodPost, h.handleHousehold)
	h.handle(mux, "/api/growth", "growth", http.MethodPost, h.handleGrowth)
	h.handle(mux, "/api/portfolio", "portfolio", http.MethodPost, h.handlePortfolio)

	// Configuration check for uploaded YAML
	h.handle(mux, "/api/config/validate", "config_validate", http.MethodPost, h.handleConfigValidate)

	// Lead hand-off
	h.handle(mux, "/api/leads", "leads", http.MethodPost, h.handleLead)

	// Version endpoint for UI metadata
	h.handle(mux, "/api/version", "version", http.MethodGet, h.handleVersion)

	mux.Handle("/metrics", h.metrics.Handler())

	return withRequestLogging(h.logger, mux)
}

// handle registers fn with method enforcement, rate limiting and metrics.
func (h *handler) handle(mux *http.ServeMux, pattern, endpoint, method string, fn http.HandlerFunc) {
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	})
	if h.limiter != nil {
		next = h.limiter.Middleware(next)
	}
	mux.Handle(pattern, h.metrics.Middleware(endpoint, next))
}

type mortgageRequest struct {
	calc.MortgageInputs
	// AsOf anchors the payoff date (YYYY-MM-DD or YYYY-MM); empty means today.
	AsOf string `json:"asOf,omitempty"`
}

type mortgageResponse struct {
	calc.MortgageResult
	PayoffMonth string `json:"payoffMonth"`
}

func (h *handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMortgage"

	var req mortgageRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	asOf, err := datetime.ParseAsOf(req.AsOf)
	if err != nil {
		h.respondCalcError(w, validation.Problem("asOf", "%v", err), op)
		return
	}
	if asOf.IsZero() {
		asOf = h.now()
	}

	inputs := req.MortgageInputs.WithDefaults()
	key := struct {
		Inputs calc.MortgageInputs `json:"inputs"`
		AsOf   string              `json:"asOf"`
	}{inputs, asOf.Format(datetime.DateLayout)}

	result, err := computeCached(r.Context(), h, "mortgage", key, func() (calc.MortgageResult, error) {
		return calc.CalculateMortgageAt(inputs, asOf)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	h.logger.Debug("mortgage calculated",
		zap.String("op", op),
		zap.Int("payoff_periods", result.PayoffPeriods),
		zap.Bool("savings", result.PotentialSavings != nil),
	)

	h.writeJSON(w, http.StatusOK, mortgageResponse{
		MortgageResult: result,
		PayoffMonth:    result.PayoffDate.Format(datetime.DateTimeLayout),
	})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	var inputs calc.MortgageInputs
	if !h.decodeJSON(w, r, &inputs, op) {
		return
	}
	inputs = inputs.WithDefaults()

	schedule, err := computeCached(r.Context(), h, "schedule", inputs, func() (calc.Schedule, error) {
		return calc.GenerateSchedule(inputs)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, schedule)
}

func (h *handler) handleBorrowing(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBorrowing"

	var inputs calc.BorrowingInputs
	if !h.decodeJSON(w, r, &inputs, op) {
		return
	}

	key := struct {
		Inputs calc.BorrowingInputs `json:"inputs"`
		Policy calc.BorrowingPolicy `json:"policy"`
	}{inputs, h.borrowing}

	result, err := computeCached(r.Context(), h, "borrowing", key, func() (calc.BorrowingResult, error) {
		return calc.CalculateCapacity(inputs, h.borrowing)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type taxRequest struct {
	Income float64 `json:"income"`
	// Rates optionally replaces the per-band rates (fractions) of the
	// configured table, keeping its boundaries.
	Rates []float64 `json:"rates,omitempty"`
}

func (h *handler) handleTax(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTax"

	var req taxRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	table := h.taxTable
	if len(req.Rates) > 0 {
		adjusted, err := table.WithRates(req.Rates)
		if err != nil {
			h.respondCalcError(w, err, op)
			return
		}
		table = adjusted
	}

	key := struct {
		Income float64       `json:"income"`
		Table  calc.TaxTable `json:"table"`
	}{req.Income, table}

	result, err := computeCached(r.Context(), h, "tax", key, func() (calc.TaxResult, error) {
		return table.Calculate(req.Income)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleTaxBrackets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"brackets": h.taxTable,
	})
}

func (h *handler) handleHousehold(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHousehold"

	var inputs calc.HouseholdInputs
	if !h.decodeJSON(w, r, &inputs, op) {
		return
	}

	key := struct {
		Inputs calc.HouseholdInputs `json:"inputs"`
		Table  calc.TaxTable        `json:"table"`
	}{inputs, h.taxTable}

	result, err := computeCached(r.Context(), h, "household", key, func() (calc.HouseholdResult, error) {
		return calc.CalculateHousehold(inputs, h.taxTable)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleGrowth(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGrowth"

	var inputs calc.GrowthInputs
	if !h.decodeJSON(w, r, &inputs, op) {
		return
	}

	result, err := computeCached(r.Context(), h, "growth", inputs, func() (calc.GrowthResult, error) {
		return calc.ProjectGrowth(inputs)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePortfolio"

	var portfolio calc.Portfolio
	if !h.decodeJSON(w, r, &portfolio, op) {
		return
	}

	result, err := computeCached(r.Context(), h, "portfolio", portfolio, func() (calc.PortfolioSummary, error) {
		return calc.SummarizePortfolio(portfolio)
	})
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type configValidationResponse struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings"`
}

// handleConfigValidate checks a YAML configuration document the way the CLI
// loads one and reports errors and warnings without applying it.
func (h *handler) handleConfigValidate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigValidate"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		return
	}

	resp := configValidationResponse{Warnings: []string{}}
	conf, err := config.LoadConfigurationFromReader(bytes.NewReader(data))
	if err == nil {
		err = conf.Validate()
	}
	if err != nil {
		resp.Error = err.Error()
		h.writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp.Valid = true
	resp.Warnings = append(resp.Warnings, conf.ValidateConfiguration()...)
	h.logger.Debug("configuration validated",
		zap.String("op", op),
		zap.Int("warnings", len(resp.Warnings)),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

type leadResponse struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (h *handler) handleLead(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLead"

	var submission leads.Submission
	if !h.decodeJSON(w, r, &submission, op) {
		return
	}

	lead, err := h.leads.Submit(r.Context(), submission)
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}
	h.metrics.ObserveLead()

	h.writeJSON(w, http.StatusCreated, leadResponse{
		ID:          lead.ID.String(),
		SubmittedAt: lead.SubmittedAt,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// computeCached runs compute through the result cache when one is
// configured. The key payload must hold everything the result depends on:
// the normalized request plus any configured policy or tax table, since a
// shared cache may serve instances configured differently.
func computeCached[T any](ctx context.Context, h *handler, kind string, keyPayload any, compute func() (T, error)) (T, error) {
	run := compute
	if h.cache != nil {
		if payload, err := json.Marshal(keyPayload); err == nil {
			key := cache.Key(kind, payload)
			run = func() (T, error) {
				fetched, err := cache.Fetch(ctx, h.cache, key, h.cacheTTL, compute)
				h.metrics.ObserveCacheLookup(string(fetched.Outcome))
				if fetched.CacheErr != nil {
					h.logger.Warn("result cache unavailable",
						zap.String("op", "server.computeCached"),
						zap.String("kind", kind),
						zap.Error(fetched.CacheErr),
					)
				}
				return fetched.Value, err
			}
		}
	}

	result, err := run()
	switch {
	case err == nil:
		h.metrics.ObserveCalculation(kind, "ok")
	case errors.Is(err, calc.ErrInvalidInput):
		h.metrics.ObserveCalculation(kind, "invalid")
	default:
		h.metrics.ObserveCalculation(kind, "error")
	}
	return result, err
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and bodies over the size limit. It writes the error response itself and
// reports whether decoding succeeded.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		if errors.Is(err, io.EOF) {
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	if dec.More() {
		h.respondErrorWithOp(w, http.StatusBadRequest, "request body must contain a single JSON object", op)
		return false
	}
	return true
}

type errorResponse struct {
	Error  string                    `json:"error"`
	Fields []validation.FieldProblem `json:"fields,omitempty"`
}

// respondCalcError maps invalid input to 400 with field details and anything
// else to 500.
func (h *handler) respondCalcError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, calc.ErrInvalidInput) {
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  err.Error(),
			Fields: validation.Problems(err),
		})
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes payload before committing the status. A payload that
// cannot be encoded is answered with a 500.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.Int("status", status),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
