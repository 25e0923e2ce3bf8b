package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "bad input: name missing", Fail(http.StatusBadRequest, "bad input", "name missing").Error.Message)
	assert.Equal(t, "store down: timeout", Fail(http.StatusBadGateway, "store down", "timeout").Error.Message)
	assert.Equal(t, "oops", Fail(http.StatusInternalServerError, "oops", "nil pointer").Error.Message)
	assert.Equal(t, 401, Unauthorized("no token").Error.Code)
	assert.Nil(t, Success([]int{1}, nil).Error)
}
