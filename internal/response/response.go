// Package response holds the JSON envelope every API answer is wrapped in.
package response

import (
	"net/http"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// APIResponse carries either data (with optional paging meta) or an error, never both.
type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

// Fail builds an error envelope. Server-side failures hide detail from the
// caller, so only msg is kept for 5xx statuses other than 502.
func Fail(status int, msg, detail string) APIResponse {
	text := msg
	if detail != "" && (status < http.StatusInternalServerError || status == http.StatusBadGateway) {
		text = msg + ": " + detail
	}
	return APIResponse{Error: internal.NewAppError(status, text)}
}

func Unauthorized(msg string) APIResponse {
	return Fail(http.StatusUnauthorized, msg, "")
}
