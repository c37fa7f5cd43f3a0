package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/you/accountsvc/internal/http/handlers"
	"github.com/you/accountsvc/internal/http/middleware"
)

// BuildRouter wires all routes. rl may be nil when rate limiting is disabled.
func BuildRouter(ah *handlers.AuthHandlers, uh *handlers.UserHandlers, smw *middleware.SessionMW, pmw *middleware.PrometheusMW, rl *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), pmw.Instrument())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	if rl != nil {
		auth.Use(rl.Limit())
	}
	auth.POST("/login", ah.Login)
	auth.POST("/register", ah.Register)
	auth.POST("/logout", ah.Logout)

	user := r.Group("/user")
	user.GET("/me", smw.RequireSession(), uh.Me)
	user.POST("/profile", uh.ProfileLookup)
	user.PUT("/profile", smw.RequireSession(), uh.UpdateProfile)

	return r
}
