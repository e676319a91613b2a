package http

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionName = "ChatSessions"

// Services are the application entry points the router exposes.
type Services struct {
	Signal    *signal.SignalWSController
	Accounts  *app.Accounts
	History   *app.History
	Favorites *app.Favorites
	Rooms     *app.RoomManager
}

func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	if info, err := os.Stat(cfg.StaticPath); err == nil && info.IsDir() {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.StaticPath, "index.html"))
		})
		log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("serving static UI")
	}

	r.GET("/ws", func(c *gin.Context) {
		svc.Signal.HandleSignal(ctx, c)
	})

	h := &handlers{svc: svc}
	api := r.Group("/api")

	api.POST("/register", h.register)
	api.POST("/login", h.login)
	api.POST("/logout", h.logout)
	api.GET("/me", h.me)

	api.GET("/history/:room", h.history)
	api.GET("/export/:room", h.export)

	api.POST("/favorites", h.addFavorite)
	api.DELETE("/favorites", h.removeFavorite)
	api.GET("/favorites/:username", h.listFavorites)

	api.GET("/rooms", h.rooms)
	api.GET("/rooms/:room/users", h.roomUsers)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
