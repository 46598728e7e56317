package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"folioscan/internal/handler"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func runReadiness(h *handler.HealthHandler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	h.Readiness(c)
	return w
}

func TestHealthHandler_Liveness(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	handler.NewHealthHandler(nil).Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Readiness(t *testing.T) {
	assert.Equal(t, http.StatusOK, runReadiness(handler.NewHealthHandler(nil)).Code)
	assert.Equal(t, http.StatusOK, runReadiness(handler.NewHealthHandler(stubPinger{})).Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		runReadiness(handler.NewHealthHandler(stubPinger{err: errors.New("refused")})).Code)
}
