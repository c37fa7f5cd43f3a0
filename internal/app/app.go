package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/you/accountsvc/internal/config"
	httpx "github.com/you/accountsvc/internal/http"
	"github.com/you/accountsvc/internal/http/handlers"
	"github.com/you/accountsvc/internal/http/middleware"
)

// Run wires the service and blocks serving HTTP.
func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	authH := handlers.NewAuthHandlers(c.AuthSvc, cfg.SessionTTL, cfg.SecureCookies)
	userH := handlers.NewUserHandlers(c.UserSvc, c.AvatarStore)

	sessionMW := middleware.NewSessionMW(c.SessionRepo, c.UserRepo)
	metricsMW := middleware.NewPrometheusMW()

	var rl *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rl = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		log.Info().Float64("rps", cfg.RateLimit.RPS).Int("burst", cfg.RateLimit.Burst).
			Msg("rate limiting enabled on /auth")
	}

	r := httpx.BuildRouter(authH, userH, sessionMW, metricsMW, rl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Janitor.Run(ctx)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, r)
}
