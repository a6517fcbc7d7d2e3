package service

import (
	"context"
	"strings"

	"github.com/sangkips/tableside-api/internal/domain/entity"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// SettingsService manages the billing and receipt settings of the current outlet
type SettingsService struct {
	outlets repository.OutletRepository
	log     *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(outlets repository.OutletRepository, log *zap.Logger) *SettingsService {
	return &SettingsService{
		outlets: outlets,
		log:     log,
	}
}

// GetSettings returns the outlet in ctx with its settings
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.Outlet, error) {
	outletID, ok := repository.GetOutletID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Outlet context required")
	}
	outlet, err := s.outlets.GetByID(ctx, outletID)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, apperror.NewNotFoundError("Outlet")
	}
	return outlet, nil
}

// UpdateSettingsInput replaces the outlet settings. A nil DefaultTaxPercent
// falls back to the service-wide default.
type UpdateSettingsInput struct {
	Currency          string
	DefaultTaxPercent *decimal.Decimal
	TaxLabel          string
	Address           string
	Phone             string
	TaxID             string
	ReceiptFooter     string
}

// UpdateSettings validates and stores new settings for the outlet in ctx
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.Outlet, error) {
	var fieldErrors []apperror.FieldError
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency != "" && len(currency) != 3 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "currency", Message: "must be a three letter ISO code"})
	}
	if pct := input.DefaultTaxPercent; pct != nil && (pct.IsNegative() || pct.GreaterThan(hundred)) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "default_tax_percent", Message: "must be between 0 and 100"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	outlet, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	settings := entity.OutletSettings{
		Currency:          currency,
		DefaultTaxPercent: input.DefaultTaxPercent,
		TaxLabel:          strings.TrimSpace(input.TaxLabel),
		Address:           strings.TrimSpace(input.Address),
		Phone:             strings.TrimSpace(input.Phone),
		TaxID:             strings.TrimSpace(input.TaxID),
		ReceiptFooter:     strings.TrimSpace(input.ReceiptFooter),
	}
	if err := s.outlets.UpdateSettings(ctx, outlet.ID, settings); err != nil {
		return nil, err
	}
	outlet.Settings = settings

	s.log.Info("outlet settings updated", zap.String("outlet_id", outlet.ID.String()))
	return outlet, nil
}
