package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorNotFoundUnwrap(t *testing.T) {
	err := NewAPIError(http.StatusNotFound, " Producto no encontrado. ")

	assert.True(t, IsNotFound(err))
	assert.Equal(t, "HTTP 404: Producto no encontrado.", err.Error())
	assert.Equal(t, "Producto no encontrado.", UserMessage(err))
}

func TestAPIErrorWithoutMessage(t *testing.T) {
	err := NewAPIError(http.StatusInternalServerError, "")

	assert.False(t, IsNotFound(err))
	assert.Equal(t, "HTTP 500 Internal Server Error", err.Error())
	assert.Equal(t, err.Error(), UserMessage(err))
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("/api/products", cause)

	assert.True(t, IsNetwork(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", UserMessage(err))

	_, ok := AsAPIError(err)
	assert.False(t, ok)
}

func TestUserMessageNil(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
}
