package controllers

import (
	"net/http"

	"github.com/shoplivehq/shoplive-backend/api/responses"
	"github.com/shoplivehq/shoplive-backend/pkg/config"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
	"github.com/shoplivehq/shoplive-backend/pkg/logger"
	"github.com/shoplivehq/shoplive-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopLive-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopLive-Env", cfg.App.Env)

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not reachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
