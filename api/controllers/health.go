package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopflow/shopflow-backend/api/responses"
	"github.com/shopflow/shopflow-backend/pkg/config"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
)

type pinger interface {
	Ping(context.Context) error
}

// Healthz reports liveness plus the state of the mongo and redis connections.
func Healthz(cfg *config.Config, db, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"api": "ok"}
		healthy := true

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				checks["mongo"] = "down"
				healthy = false
			} else {
				checks["mongo"] = "ok"
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		w.Header().Set("X-ShopFlow-Env", cfg.App.Env)
		if !healthy {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "service degraded"))
			return
		}
		responses.WriteSuccess(w, "healthy", checks)
	}
}
