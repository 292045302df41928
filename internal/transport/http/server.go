package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/mockchat/internal/config"
	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/session"
)

// NewServer builds the view server: JSON routes over the session, the
// websocket update feed and the metrics endpoint.
func NewServer(sess *session.Session, bus *core.Bus, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", gin.WrapH(NewWSHandler(sess, cfg.WSRateLimit, logger)))

	h := NewAPIHandlers(sess, bus, logger)
	api := router.Group("/api")
	{
		api.GET("/state", h.State)
		api.GET("/rooms", h.Rooms)
		api.GET("/rooms/:room/messages", h.RoomMessages)
		api.GET("/users", h.Users)
		api.POST("/connect", h.Connect)
		api.POST("/disconnect", h.Disconnect)
		api.POST("/messages", h.SendMessage)
		api.POST("/join", h.JoinRoom)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
