package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"upcheck/internal/account"
	"upcheck/internal/handler"
	"upcheck/internal/hub"
	"upcheck/internal/middleware"
	"upcheck/internal/registry"
	"upcheck/internal/token"
)

type Deps struct {
	Accounts *account.Service
	Tokens   *token.Service
	Registry *registry.Registry
	Hub      *hub.Hub
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	signupLimiter := middleware.NewRateLimiter(10, time.Minute)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	userHandler := &handler.UserHandler{Accounts: deps.Accounts}
	r.POST("/users", middleware.RateLimit(signupLimiter), userHandler.Create)

	tokenHandler := &handler.TokenHandler{Tokens: deps.Tokens}
	r.POST("/tokens", middleware.RateLimit(loginLimiter), tokenHandler.Create)
	r.GET("/tokens/:id", tokenHandler.Get)
	r.PUT("/tokens/:id", tokenHandler.Extend)
	r.DELETE("/tokens/:id", tokenHandler.Delete)

	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(deps.Tokens))
	protected.GET("/users/:phone", userHandler.Get)
	protected.PUT("/users/:phone", userHandler.Update)
	protected.DELETE("/users/:phone", userHandler.Delete)

	checkHandler := &handler.CheckHandler{Registry: deps.Registry}
	protected.POST("/checks", checkHandler.Create)
	protected.GET("/checks/:id", checkHandler.Get)
	protected.PUT("/checks/:id", checkHandler.Update)
	protected.DELETE("/checks/:id", checkHandler.Delete)

	wsHandler := &handler.WebSocketHandler{Hub: deps.Hub, Auth: deps.Tokens}
	r.GET("/ws", wsHandler.Serve)

	return r
}
