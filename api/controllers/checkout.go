package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/gearmart-backend/api/responses"
	"github.com/angelmondragon/gearmart-backend/api/validators"
	"github.com/angelmondragon/gearmart-backend/internal/checkout"
	"github.com/angelmondragon/gearmart-backend/internal/profile"
	"github.com/angelmondragon/gearmart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName    string `json:"customer_name" validate:"omitempty,max=120"`
	ShippingAddress string `json:"shipping_address" validate:"omitempty,max=240"`
	PaymentMethod   string `json:"payment_method" validate:"required,oneof=debit credit transfer"`
}

// CheckoutCreate runs a checkout attempt. Customer details default to the
// active profile when the body omits them; discount eligibility always comes
// from the profile, never from the caller.
func CheckoutCreate(svc checkout.Service, profiles profile.Provider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || profiles == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := profiles.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile"))
			return
		}

		req := checkout.Request{
			CustomerName:     strings.TrimSpace(payload.CustomerName),
			ShippingAddress:  strings.TrimSpace(payload.ShippingAddress),
			PaymentMethod:    enums.PaymentMethod(payload.PaymentMethod),
			DiscountEligible: current.DiscountEligible,
		}
		if req.CustomerName == "" {
			req.CustomerName = current.CustomerName
		}
		if req.ShippingAddress == "" {
			req.ShippingAddress = current.ShippingAddress
		}

		order, err := svc.Execute(r.Context(), req)
		if err != nil {
			if errors.Is(err, checkout.ErrCheckoutInProgress) {
				responses.WriteError(r.Context(), logg, w, checkout.ErrCheckoutInProgress)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersLast returns the most recently completed order.
func OrdersLast(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		order := svc.LastOrder()
		if order == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no completed order"))
			return
		}

		responses.WriteSuccess(w, order)
	}
}
