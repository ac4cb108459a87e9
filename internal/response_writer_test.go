package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriter_WriteHeader(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusBadRequest)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusBadRequest, rw.Status())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, rw.Written())
}

func TestResponseWriter_Write(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = rw.Write([]byte(" world"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, int64(11), rw.Size())
	assert.Equal(t, http.StatusOK, rw.Status())
	assert.Equal(t, "hello world", w.Body.String())
}

func TestResponseWriter_Reuse(t *testing.T) {
	t.Parallel()

	rw := NewResponseWriter(httptest.NewRecorder())
	assert.Same(t, rw, NewResponseWriter(rw))
}

func TestResponseWriter_OnBeforeWrite(t *testing.T) {
	t.Parallel()

	t.Run("hooks run once in order", func(t *testing.T) {
		t.Parallel()
		rw := NewResponseWriter(httptest.NewRecorder())

		var order []int
		rw.OnBeforeWrite(func() { order = append(order, 1) })
		rw.OnBeforeWrite(func() { order = append(order, 2) })

		rw.WriteHeader(http.StatusCreated)
		_, _ = rw.Write([]byte("data"))

		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("implicit header on write", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)

		rw.OnBeforeWrite(func() { w.Header().Set("X-Hook", "yes") })
		_, _ = rw.Write([]byte("data"))

		assert.Equal(t, "yes", w.Header().Get("X-Hook"))
	})
}

func TestResponseWriter_FlushAndUnwrap(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.Flush()
	assert.True(t, w.Flushed)
	assert.Equal(t, http.ResponseWriter(w), rw.Unwrap())
}
