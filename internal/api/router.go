package api

import (
	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
)

func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{"status": "ok"}, nil)
	})
	r.GET("/avatars/*path", GetAvatar(app))

	protected := r.Group("/", auth.Middleware(app.TokenProvider(), app.Logger()))
	if app.Auth() != nil {
		r.POST("/auth/register", Register(app))
		r.POST("/auth/login", Login(app))
		protected.POST("/auth/logout", Logout(app))
		protected.POST("/auth/refresh", Refresh(app))
		protected.GET("/auth/session", GetSession(app))
	}

	protected.GET("/entries", GetEntries(app))
	protected.POST("/entries", PostEntry(app))
	protected.PUT("/entries/:id", PutEntry(app))
	protected.DELETE("/entries/:id", DeleteEntry(app))

	protected.GET("/baby", GetBabyProfile(app))
	protected.PUT("/baby", PutBabyProfile(app))

	protected.POST("/avatar", PostAvatar(app))
	protected.GET("/dashboard", GetDashboard(app))
	return r
}
