package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearmart-backend/api/responses"
	"github.com/angelmondragon/gearmart-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

// ProductsList exposes the product catalog in insertion order.
func ProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}
