package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystemTestRouter() *gin.Engine {
	h := NewSystemHandler(nil)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/system/info", h.GetSystemInfo)
	return router
}

func TestSystemHandler_Health(t *testing.T) {
	router := newSystemTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, "ok", resp.Data.Database)
	assert.NotEmpty(t, resp.Data.Uptime)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	router := newSystemTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/system/info", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ShopSync Backend", resp.Data.Name)
	assert.NotEmpty(t, resp.Data.GoVersion)
}
