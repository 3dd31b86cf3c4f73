package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/priceworks/discount-engine/pkg/db/models"
	"github.com/priceworks/discount-engine/pkg/enums"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/logger"
)

// Setting names understood by the engine.
const (
	NameCalculateFrom          = "calculate_from"
	NameApplyProductDiscountTo = "apply_product_discount_to"
	NameShowBulkTable          = "show_bulk_table"
)

// Defaults used when a setting row is missing or unreadable.
const (
	defaultCalculateFrom = enums.PriceBasisRegular
	defaultApplyMethod   = enums.ApplyMethodBiggestDiscount
	defaultShowBulkTable = true
)

var knownNames = []string{
	NameCalculateFrom,
	NameApplyProductDiscountTo,
	NameShowBulkTable,
}

// Service reads and writes engine settings. Read paths degrade to defaults
// when the store is unavailable so pricing never hard-fails on settings.
type Service interface {
	CalculateFrom(ctx context.Context) enums.PriceBasis
	ApplyProductDiscountTo(ctx context.Context) enums.ApplyMethod
	ShowBulkTable(ctx context.Context) bool
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, name, value string) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs a settings service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// CalculateFrom returns the base price source for discount math.
func (s *service) CalculateFrom(ctx context.Context) enums.PriceBasis {
	raw := s.lookup(ctx, NameCalculateFrom)
	if raw == "" {
		return defaultCalculateFrom
	}
	basis, err := enums.ParsePriceBasis(raw)
	if err != nil {
		return defaultCalculateFrom
	}
	return basis
}

// ApplyProductDiscountTo returns the resolution method for product rules.
func (s *service) ApplyProductDiscountTo(ctx context.Context) enums.ApplyMethod {
	raw := s.lookup(ctx, NameApplyProductDiscountTo)
	if raw == "" {
		return defaultApplyMethod
	}
	method, err := enums.ParseApplyMethod(raw)
	if err != nil {
		return defaultApplyMethod
	}
	return method
}

// ShowBulkTable reports whether product pages should render the tier table.
func (s *service) ShowBulkTable(ctx context.Context) bool {
	raw := s.lookup(ctx, NameShowBulkTable)
	if raw == "" {
		return defaultShowBulkTable
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultShowBulkTable
	}
	return parsed
}

// All returns every known setting with defaults filled in for missing rows.
func (s *service) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list settings")
	}

	values := map[string]string{
		NameCalculateFrom:          defaultCalculateFrom.String(),
		NameApplyProductDiscountTo: defaultApplyMethod.String(),
		NameShowBulkTable:          strconv.FormatBool(defaultShowBulkTable),
	}
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	return values, nil
}

// Set validates and stores a setting value.
func (s *service) Set(ctx context.Context, name, value string) error {
	if !isKnownName(name) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown setting name")
	}
	if err := validateValue(name, value); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, &models.Setting{Name: name, Value: value}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert setting")
	}
	return nil
}

func (s *service) lookup(ctx context.Context, name string) string {
	row, err := s.repo.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(ctx, fmt.Sprintf("settings lookup failed for %s, using default", name))
		}
		return ""
	}
	return row.Value
}

func isKnownName(name string) bool {
	for _, candidate := range knownNames {
		if candidate == name {
			return true
		}
	}
	return false
}

func validateValue(name, value string) error {
	switch name {
	case NameCalculateFrom:
		if _, err := enums.ParsePriceBasis(value); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid calculate_from value")
		}
	case NameApplyProductDiscountTo:
		if _, err := enums.ParseApplyMethod(value); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid apply_product_discount_to value")
		}
	case NameShowBulkTable:
		if _, err := strconv.ParseBool(value); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid show_bulk_table value")
		}
	}
	return nil
}
