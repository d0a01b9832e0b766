package payslip

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/payewise/takehome-api/internal/bands"
	"github.com/payewise/takehome-api/internal/common"
	"github.com/payewise/takehome-api/internal/obs"
	"github.com/payewise/takehome-api/internal/resilience"
	"github.com/payewise/takehome-api/internal/tax"
)

type calculator interface {
	CalculateWithDeductions(ctx context.Context, taxYear string, salary, preTaxAdjustments decimal.Decimal, deductions []tax.Deduction) (tax.NetIncome, error)
}

// Service orchestrates payslip calculations behind the HTTP surface.
type Service struct {
	calc     calculator
	bands    tax.BandSource
	validate *validator.Validate
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Calculator calculator
	Bands      tax.BandSource
}

// CalculationRequest is the payload accepted by the calculations endpoint.
// Amounts unmarshal from JSON strings or bare numbers.
type CalculationRequest struct {
	TaxYear           string           `json:"taxYear" validate:"required"`
	Salary            decimal.Decimal  `json:"salary"`
	PreTaxAdjustments decimal.Decimal  `json:"preTaxAdjustments"`
	Deductions        []DeductionInput `json:"deductions" validate:"dive"`
}

// DeductionInput names a post-tax deduction to carry through to the payslip.
type DeductionInput struct {
	Name   string          `json:"name" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

// ValidationIssue reports a single failed request constraint.
type ValidationIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Calculator == nil {
		return nil, errors.New("payslip: calculator is required")
	}
	if cfg.Bands == nil {
		return nil, errors.New("payslip: band source is required")
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})
	return &Service{calc: cfg.Calculator, bands: cfg.Bands, validate: validate}, nil
}

// decimalAsFloat lets validator range tags apply to decimal fields.
func decimalAsFloat(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Calculate validates the request and produces a rounded payslip.
func (s *Service) Calculate(ctx context.Context, req CalculationRequest) (tax.NetIncome, error) {
	ctx, span := otel.Tracer("payslip.Service").Start(ctx, "PayslipService.Calculate")
	defer span.End()

	start := time.Now()
	net, err := s.calculate(ctx, req)
	s.observe(span, req.TaxYear, time.Since(start), err)
	return net, err
}

func (s *Service) calculate(ctx context.Context, req CalculationRequest) (tax.NetIncome, error) {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return tax.NetIncome{}, &common.AppError{
				Code:       "VALIDATION",
				Message:    "invalid calculation request",
				HTTPStatus: http.StatusBadRequest,
				Details:    issuesFrom(fieldErrs),
			}
		}
		return tax.NetIncome{}, err
	}
	deductions := make([]tax.Deduction, 0, len(req.Deductions))
	for _, d := range req.Deductions {
		deductions = append(deductions, tax.Deduction{Name: d.Name, Amount: d.Amount})
	}
	return s.calc.CalculateWithDeductions(ctx, req.TaxYear, req.Salary, req.PreTaxAdjustments, deductions)
}

// TaxYears lists the years calculations are available for, oldest first.
func (s *Service) TaxYears() []tax.Year {
	return tax.Years()
}

// BandsFor resolves the band table backing a given tax year.
func (s *Service) BandsFor(ctx context.Context, taxYear string) (tax.Bands, error) {
	year, err := tax.ParseYear(taxYear)
	if err != nil {
		return tax.Bands{}, err
	}
	return s.bands.BandsFor(ctx, year)
}

func issuesFrom(fieldErrs validator.ValidationErrors) []ValidationIssue {
	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, ValidationIssue{Field: fe.Namespace(), Rule: fe.Tag()})
	}
	return issues
}

func (s *Service) observe(span trace.Span, taxYear string, took time.Duration, err error) {
	yearLabel := "invalid"
	if year, parseErr := tax.ParseYear(taxYear); parseErr == nil {
		yearLabel = year.String()
	}
	result := resultLabel(err)
	span.SetAttributes(
		attribute.String("calculation.tax_year", yearLabel),
		attribute.String("calculation.result", result),
		attribute.Float64("calculation.duration_ms", obs.DurationMillis(took)),
	)
	if obs.CalculationsTotal != nil {
		obs.CalculationsTotal.WithLabelValues(yearLabel, result).Inc()
	}
	if obs.CalculationDuration != nil {
		obs.CalculationDuration.WithLabelValues(result).Observe(obs.DurationMillis(took))
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tax.ErrInvalidTaxYear):
		return "invalid_year"
	case errors.Is(err, bands.ErrNotFound), errors.Is(err, resilience.ErrOpenCircuit):
		return "bands_unavailable"
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
			return "invalid_request"
		}
		return "error"
	}
}
