package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/auth"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/service"
)

func PostEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.EntryRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		entry, err := service.CreateEntry(c.Request.Context(), app.EntryRepo(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Failed to save entry")
			return
		}
		HandleCreated(c, app.Logger(), entry)
	}
}

// GetEntries lists the caller's entries newest first. Optional page and size
// query parameters return one window; out-of-range pages are empty.
func GetEntries(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		entries, err := app.EntryRepo().ListEntries(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch entries")
			return
		}
		internal.SortEntries(entries)
		meta := map[string]any{"total": len(entries)}

		if c.Query("page") != "" || c.Query("size") != "" {
			page, perr := strconv.Atoi(c.DefaultQuery("page", "1"))
			size, serr := strconv.Atoi(c.DefaultQuery("size", "10"))
			if perr != nil || serr != nil || page < 1 || size < 1 {
				HandleError(c, app.Logger(), errors.New("page and size must be positive integers"), 400, "Invalid pagination")
				return
			}
			start := (page - 1) * size
			switch {
			case start >= len(entries):
				entries = []internal.Entry{}
			default:
				entries = entries[start:min(start+size, len(entries))]
			}
			meta["page"] = page
			meta["size"] = size
		}
		HandleSuccess(c, app.Logger(), entries, meta)
	}
}

func PutEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var changes internal.EntryChanges
		if err := c.ShouldBindJSON(&changes); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid entry changes")
			return
		}
		entry, err := service.UpdateEntry(c.Request.Context(), app.EntryRepo(), user, c.Param("id"), changes)
		if err != nil {
			HandleError(c, app.Logger(), err, 0, "Failed to update entry")
			return
		}
		HandleSuccess(c, app.Logger(), entry, nil)
	}
}

func DeleteEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if err := service.DeleteEntry(c.Request.Context(), app.EntryRepo(), user, c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, 0, "Failed to delete entry")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		entries, err := app.EntryRepo().ListEntries(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch entries for dashboard")
			return
		}
		HandleSuccess(c, app.Logger(), service.CalculateDashboard(entries), nil)
	}
}
