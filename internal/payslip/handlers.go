package payslip

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/payewise/takehome-api/internal/bands"
	"github.com/payewise/takehome-api/internal/common"
	"github.com/payewise/takehome-api/internal/resilience"
	"github.com/payewise/takehome-api/internal/tax"
)

// Handler exposes the public payslip endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Calculate handles POST /api/v1/calculations.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payslip service not configured", nil)
		return
	}
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	net, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, net)
}

// TaxYears handles GET /api/v1/tax-years.
func (h *Handler) TaxYears(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payslip service not configured", nil)
		return
	}
	common.JSONData(w, http.StatusOK, h.service.TaxYears())
}

// Bands handles GET /api/v1/bands with a required taxYear query parameter.
func (h *Handler) Bands(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payslip service not configured", nil)
		return
	}
	taxYear := strings.TrimSpace(r.URL.Query().Get("taxYear"))
	if taxYear == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "taxYear query parameter is required", nil)
		return
	}
	table, err := h.service.BandsFor(r.Context(), taxYear)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, table)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		common.JSONError(w, status, code, message, appErr.Details)
	case errors.Is(err, tax.ErrInvalidTaxYear):
		common.JSONError(w, http.StatusBadRequest, "INVALID_TAX_YEAR", err.Error(), nil)
	case errors.Is(err, bands.ErrNotFound), errors.Is(err, resilience.ErrOpenCircuit):
		common.JSONError(w, http.StatusServiceUnavailable, "BANDS_UNAVAILABLE", "tax band data is unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
