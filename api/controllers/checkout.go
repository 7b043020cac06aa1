package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/shopmasterhq/shopmaster-backend/api/responses"
	"github.com/shopmasterhq/shopmaster-backend/api/validators"
	"github.com/shopmasterhq/shopmaster-backend/internal/cart"
	"github.com/shopmasterhq/shopmaster-backend/internal/sales"
	"github.com/shopmasterhq/shopmaster-backend/pkg/enums"
	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
)

type checkoutRequest struct {
	ShopType      enums.ShopType    `json:"shop_type" validate:"required"`
	CustomerName  *string           `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	CustomerPhone *string           `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
	PaymentMode   enums.PaymentMode `json:"payment_mode" validate:"required"`
}

// Checkout commits the till's cart as one sale. The cart total shown to the
// cashier rides along as the declared total so any price drift between
// carting and committing surfaces as a rejection instead of a silent change.
func Checkout(cartSvc cart.Service, salesSvc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartLines, err := cartSvc.Lines(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]sales.CommitLineInput, len(cartLines))
		declared := decimal.Zero
		for i, line := range cartLines {
			lines[i] = sales.CommitLineInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			}
			declared = declared.Add(line.Subtotal)
		}

		sale, err := salesSvc.Commit(r.Context(), sales.CommitSaleInput{
			ShopType:      payload.ShopType,
			CustomerName:  payload.CustomerName,
			CustomerPhone: payload.CustomerPhone,
			PaymentMode:   payload.PaymentMode,
			Lines:         lines,
			DeclaredTotal: &declared,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// A committed sale invalidates the cart regardless of what happens to
		// this session afterwards.
		if err := cartSvc.Clear(r.Context(), sessionID); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "session_id", sessionID), "failed to clear cart after checkout")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}
