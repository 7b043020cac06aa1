package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shopmasterhq/shopmaster-backend/api/middleware"
	"github.com/shopmasterhq/shopmaster-backend/api/responses"
	"github.com/shopmasterhq/shopmaster-backend/api/validators"
	"github.com/shopmasterhq/shopmaster-backend/internal/cart"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	// Quantity is a string so "2" and "0.256" survive decoding untouched;
	// empty defaults to one unit.
	Quantity string `json:"quantity,omitempty"`
}

type addWeighedItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	WeightKG  string    `json:"weight_kg" validate:"required"`
}

type removeCartLineRequest struct {
	Index int `json:"index" validate:"min=0"`
}

// GetCart returns the till's current cart.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), sessionFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AddCartItem adds a unit-counted product to the till's cart.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddItem(r.Context(), sessionFrom(r), payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// AddWeighedCartItem adds a weighed KG entry to the till's cart.
func AddWeighedCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addWeighedItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddWeighedItem(r.Context(), sessionFrom(r), payload.ProductID, payload.WeightKG)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// RemoveCartLine drops one line from the till's cart by position.
func RemoveCartLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload removeCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveLine(r.Context(), sessionFrom(r), payload.Index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ClearCart abandons the till's current cart.
func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), sessionFrom(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func sessionFrom(r *http.Request) string {
	return middleware.TillSessionFromContext(r.Context())
}

func requireSession(r *http.Request) (string, error) {
	sessionID := sessionFrom(r)
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "till session is required")
	}
	return sessionID, nil
}
