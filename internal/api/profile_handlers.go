package api

import (
	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/service"
)

func GetBabyProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		profile, err := app.ProfileRepo().GetProfile(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "No baby profile for user")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}

func PutBabyProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body internal.BabyProfile
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		profile, err := service.SaveProfile(c.Request.Context(), app.ProfileRepo(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Failed to save baby profile")
			return
		}
		HandleSuccess(c, app.Logger(), profile, nil)
	}
}
