package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastReplacesAndExpires(t *testing.T) {
	var buf bytes.Buffer
	toast := NewToast(&buf, 50*time.Millisecond, false)
	defer toast.Close()

	toast.Notify("Cargando", Info)
	toast.Notify("Error al cargar productos", Error)

	msg, ok := toast.Current()
	require.True(t, ok)
	assert.Equal(t, "Error al cargar productos", msg.Text)
	assert.Equal(t, Error, msg.Kind)
	assert.Equal(t, "[info] Cargando\n[error] Error al cargar productos\n", buf.String())

	assert.Eventually(t, func() bool {
		_, visible := toast.Current()
		return !visible
	}, time.Second, 10*time.Millisecond)
}

func TestToastColor(t *testing.T) {
	var buf bytes.Buffer
	toast := NewToast(&buf, time.Minute, true)
	defer toast.Close()

	toast.Notify("ok", Success)
	assert.Equal(t, "\x1b[32m[success] ok\x1b[0m\n", buf.String())
}

func TestMulti(t *testing.T) {
	var got []string
	rec := NotifierFunc(func(m string, k Kind) { got = append(got, string(k)+":"+m) })

	Multi(rec, Discard, rec).Notify("hola", Info)
	assert.Equal(t, []string{"info:hola", "info:hola"}, got)
}
