package api

import (
	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
)

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		user, err := app.Auth().SignUp(c.Request.Context(), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Registration failed")
			return
		}
		HandleCreated(c, app.Logger(), user)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		identity, err := app.Auth().SignIn(c.Request.Context(), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Login failed")
			return
		}
		HandleSuccess(c, app.Logger(), identity, nil)
	}
}

func Logout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Auth().SignOut(c.Request.Context(), c.GetString(auth.ContextTokenKey)); err != nil {
			HandleError(c, app.Logger(), err, 0, "Logout failed")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

func Refresh(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := app.Auth().Refresh(c.Request.Context(), c.GetString(auth.ContextTokenKey))
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Refresh failed")
			return
		}
		HandleSuccess(c, app.Logger(), identity, nil)
	}
}

func GetSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := app.Auth().Identity(c.Request.Context(), c.GetString(auth.ContextTokenKey))
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Session lookup failed")
			return
		}
		HandleSuccess(c, app.Logger(), identity, nil)
	}
}
