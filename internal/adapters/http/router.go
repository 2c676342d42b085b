package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Relay/internal/adapters/signal"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const sessionName = "RelaySessions"

type Deps struct {
	Orch *orch.Orchestrator
	Hub  *signal.Hub
	ICE  webrtc.Configuration
}

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(deps.Orch, deps.Hub, cfg)
	h := &handlers{deps: deps}

	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.GET("/stats", h.stats)
	api.GET("/ice-servers", h.iceServers)
	api.POST("/session", h.openSession)
	api.DELETE("/session", h.closeSession)
	api.GET("/ws", func(c *gin.Context) {
		hs := handshakeFrom(c)
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Str("user", hs.UserID).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c, hs)
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
