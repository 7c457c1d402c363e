package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/quand/internal/profile"
)

func TestNewServer_Routes(t *testing.T) {
	s, err := NewServer(context.Background(), profile.Default(), nil)
	require.NoError(t, err)
	defer s.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/temporal/parse", strings.NewReader(`{"input":"réunion lundi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"type":"day_of_week"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quand_parse_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewServer_UnknownDefaultLocale(t *testing.T) {
	p := profile.Default()
	p.DefaultLocale = "de"
	_, err := NewServer(context.Background(), p, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default locale")
}

func TestServer_StartShutdown(t *testing.T) {
	p := profile.Default()
	p.Addr = "127.0.0.1"
	p.Port = 0
	s, err := NewServer(context.Background(), p, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, s.Addr())

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", s.Addr()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	s.Shutdown(context.Background())
}
