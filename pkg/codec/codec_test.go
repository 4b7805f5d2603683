package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCodec(t *testing.T) {
	c, err := GetCodec("json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())
	assert.Equal(t, "application/json", c.ContentType())

	pretty, err := GetCodec("json-pretty")
	require.NoError(t, err)
	data, err := pretty.Marshal(map[string]int{"page": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"page\": 2\n}", string(data))

	_, err = GetCodec("gob")
	assert.Error(t, err)
}

func TestDecodeMessage(t *testing.T) {
	c := DefaultCodec()

	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{name: "message", body: `{"message":"Credenciales inválidas"}`, want: "Credenciales inválidas", ok: true},
		{name: "error", body: `{"error":"Producto no encontrado."}`, want: "Producto no encontrado.", ok: true},
		{name: "plain text", body: "Internal Server Error", ok: false},
		{name: "json without message", body: `{"status":500}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeMessage(c, []byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
