package controllers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/angelmondragon/gearmart-backend/api/responses"
	"github.com/angelmondragon/gearmart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

// Pinger exposes the health-check surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GearMart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GearMart-Env", cfg.App.Env)

		var errs error
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("db: %w", err))
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
			}
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "not ready"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
