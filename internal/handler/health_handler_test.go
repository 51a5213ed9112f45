// internal/handler/health_handler_test.go

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct{ err error }

func (c stubChecker) Health(context.Context) error { return c.err }

func TestReadyReportsHealthy(t *testing.T) {
	h := NewHealthHandler(stubChecker{}, stubChecker{})
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string `json:"status"`
		Data   struct {
			Status   string `json:"status"`
			Services struct {
				Database bool `json:"database"`
				MQTT     bool `json:"mqtt"`
			} `json:"services"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "ok", body.Data.Status)
	assert.True(t, body.Data.Services.Database)
	assert.True(t, body.Data.Services.MQTT)
}

func TestReadyDegradedWhenDatabaseDown(t *testing.T) {
	h := NewHealthHandler(stubChecker{err: errors.New("down")}, nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLive(t *testing.T) {
	h := NewHealthHandler(stubChecker{}, nil)
	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
