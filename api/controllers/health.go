package controllers

import (
	"net/http"

	"github.com/shopmasterhq/shopmaster-backend/api/responses"
	"github.com/shopmasterhq/shopmaster-backend/pkg/config"
	"github.com/shopmasterhq/shopmaster-backend/pkg/db"
	pkgerrors "github.com/shopmasterhq/shopmaster-backend/pkg/errors"
	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopMaster-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopMaster-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
