package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearmart-backend/api/responses"
	"github.com/angelmondragon/gearmart-backend/api/validators"
	"github.com/angelmondragon/gearmart-backend/internal/cart"
	"github.com/angelmondragon/gearmart-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartFetch returns the current cart snapshot.
func CartFetch(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		snapshot, err := store.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartAddItem adds a product to the cart, merging with any existing line.
func CartAddItem(store *cart.Store, products catalog.ProductReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.AddProduct(r.Context(), product, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

// CartSetQuantity overwrites the quantity for a product; zero removes it.
func CartSetQuantity(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.SetQuantity(r.Context(), productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartRemoveItem deletes the line item for the product.
func CartRemoveItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		productID, err := validators.PathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Remove(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// CartClear empties the cart on an explicit shopper request.
func CartClear(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		if err := store.EmptyCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := store.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
