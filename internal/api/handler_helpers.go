package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/response"
)

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, internal.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, internal.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, internal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, internal.ErrStore):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the error envelope. A zero status is derived from err.
func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	if status == 0 {
		status = StatusFor(err)
	}
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(status, response.Fail(status, msg, err.Error()))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Created", requestID)
	c.JSON(http.StatusCreated, response.Success(data, nil))
}
