package controllers

import (
	"net/http"

	"github.com/mercaly/mercaly-backend/api/responses"
	"github.com/mercaly/mercaly-backend/pkg/config"
	"github.com/mercaly/mercaly-backend/pkg/db"
	pkgerrors "github.com/mercaly/mercaly-backend/pkg/errors"
	"github.com/mercaly/mercaly-backend/pkg/logger"
	"github.com/mercaly/mercaly-backend/pkg/redis"
)

const envHeader = "X-Mercaly-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database and redis connections before reporting
// ready, so orchestrators stop routing traffic when a dependency is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
