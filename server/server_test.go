package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datesense/internal/profile"
	"github.com/hrygo/datesense/plugin/datetext"
)

func TestNewServer_Routes(t *testing.T) {
	p := &profile.Profile{
		Mode:           "prod",
		Locale:         "en-US",
		Timezone:       "UTC",
		Concurrency:    1,
		MaxInputLength: 100,
		MaxBatchSize:   1,
		Version:        "1.2.3",
	}
	require.NoError(t, p.Validate())

	s, err := NewServer(context.Background(), p, datetext.NewService(p.Locale, p.Timezone))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader(`{"text":"on 1/2/2020","reference":"2020-01-01T00:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"text":"1/2/2020"`)
}

func TestServer_StartInvalidAddress(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Addr: "256.0.0.1", Port: 1}
	s, err := NewServer(context.Background(), p, datetext.NewMockTimeService())
	require.NoError(t, err)
	assert.Error(t, s.Start(context.Background()))
}

func TestNewServer_Cache(t *testing.T) {
	p := &profile.Profile{
		Mode:           "prod",
		Concurrency:    1,
		MaxInputLength: 100,
		MaxBatchSize:   1,
		CacheSize:      8,
	}
	require.NoError(t, p.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mock := datetext.NewMockTimeService()
	s, err := NewServer(ctx, p, mock)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader(`{"text":"on 1/2/2020","reference":"2020-01-01T00:00:00Z"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, mock.Calls(), 1)
}
