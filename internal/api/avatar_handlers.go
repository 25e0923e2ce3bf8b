package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
)

// PostAvatar stores the multipart "file" field and points the user's avatar at it.
func PostAvatar(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if _, err := app.Users().GetUserByID(c.Request.Context(), user.ID); err != nil {
			HandleError(c, app.Logger(), err, 0, "Unknown user")
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Missing avatar file")
			return
		}
		f, err := header.Open()
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Unreadable avatar file")
			return
		}
		defer f.Close()

		url, err := app.Avatars().Upload(header.Filename, f)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Failed to upload avatar")
			return
		}
		if err := app.Users().UpdateAvatar(c.Request.Context(), user.ID, url); err != nil {
			if rmErr := app.Avatars().Remove(url); rmErr != nil {
				app.Logger().Warnf("[request_id=%s] orphaned avatar %s: %v", c.GetString("request_id"), url, rmErr)
			}
			HandleError(c, app.Logger(), err, 0, "Failed to update avatar")
			return
		}
		HandleCreated(c, app.Logger(), gin.H{"avatar_url": url})
	}
}

func GetAvatar(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, contentType, err := app.Avatars().Open(c.Param("path"))
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Avatar not found")
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Header("Content-Type", contentType)
		http.ServeContent(c.Writer, c.Request, "", time.Time{}, r)
	}
}
