package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payables/backoffice/internal/interfaces/http/router"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping() error { return p.err }

func newSystemRouter(db Pinger) *gin.Engine {
	engine := gin.New()
	router.NewRouter(engine).Register(NewSystemHandler(db)).Setup()
	return engine
}

func TestSystemHandler_Ping(t *testing.T) {
	engine := newSystemRouter(nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	engine := newSystemRouter(nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payables Back Office API")
}

func TestSystemHandler_GetHealth(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		engine := newSystemRouter(&fakePinger{})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("unreachable database", func(t *testing.T) {
		engine := newSystemRouter(&fakePinger{err: errors.New("connection refused")})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
	})
}
