package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("sets the configured origin", func(t *testing.T) {
		mw := NewCORSMiddleware("https://app.example.com")

		rec := httptest.NewRecorder()
		mw.Handle(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("empty origin falls back to wildcard", func(t *testing.T) {
		mw := NewCORSMiddleware("")

		rec := httptest.NewRecorder()
		mw.Handle(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		mw := NewCORSMiddleware("*")
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		rec := httptest.NewRecorder()
		mw.Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
	})
}
