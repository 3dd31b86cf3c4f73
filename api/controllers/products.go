package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/priceworks/discount-engine/api/responses"
	"github.com/priceworks/discount-engine/api/validators"
	pricingsvc "github.com/priceworks/discount-engine/internal/pricing"
	pkgerrors "github.com/priceworks/discount-engine/pkg/errors"
	"github.com/priceworks/discount-engine/pkg/logger"
)

type productPriceRequest struct {
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	OriginalPrice decimal.Decimal  `json:"original_price" validate:"required"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	RegularPrice  *decimal.Decimal `json:"regular_price,omitempty"`
	Quantity      int              `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type productPriceResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Price         decimal.Decimal `json:"price"`
	OnSale        bool            `json:"on_sale"`
}

// ProductPrice computes the display price for one product under the active
// rules and configured resolution method.
func ProductPrice(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload productPriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := payload.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		now := time.Now()
		input := pricingsvc.ProductPriceInput{
			ProductID:     payload.ProductID,
			OriginalPrice: payload.OriginalPrice,
			SalePrice:     payload.SalePrice,
			RegularPrice:  payload.RegularPrice,
			Quantity:      quantity,
		}

		price := svc.ProductPrice(r.Context(), input, now)

		responses.WriteSuccess(w, productPriceResponse{
			ProductID:     payload.ProductID,
			OriginalPrice: payload.OriginalPrice,
			Price:         price,
			OnSale:        svc.ProductOnSale(r.Context(), payload.ProductID, now),
		})
	}
}

type bulkTableRowResponse struct {
	MinQuantity     int             `json:"min_quantity"`
	MaxQuantity     *int            `json:"max_quantity,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Price           decimal.Decimal `json:"price"`
}

type bulkTableResponse struct {
	ProductID uuid.UUID              `json:"product_id"`
	Rows      []bulkTableRowResponse `json:"rows"`
}

// ProductBulkTable returns the quantity discount tiers shown on product
// pages. The table is empty when the display setting is off or no bulk rule
// targets the product.
func ProductBulkTable(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		price, err := decimal.NewFromString(r.URL.Query().Get("price"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		rows := svc.BulkTable(r.Context(), productID, price, time.Now())

		out := bulkTableResponse{
			ProductID: productID,
			Rows:      make([]bulkTableRowResponse, 0, len(rows)),
		}
		for _, row := range rows {
			out.Rows = append(out.Rows, bulkTableRowResponse{
				MinQuantity:     row.MinQuantity,
				MaxQuantity:     row.MaxQuantity,
				DiscountPercent: row.DiscountPercent,
				Price:           row.Price,
			})
		}

		responses.WriteSuccess(w, out)
	}
}
