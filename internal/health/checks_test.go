package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPChecker(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Status
	}{
		{"ok", http.StatusOK, StatusHealthy},
		{"not found still reachable", http.StatusNotFound, StatusHealthy},
		{"server error", http.StatusBadGateway, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			r := NewHTTPChecker("api", srv.URL, srv.Client()).Check(context.Background())
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, srv.URL, r.Details["url"])
		})
	}
}

func TestHTTPCheckerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewHTTPChecker("api", url, nil).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "API unreachable", r.Message)
	assert.NotEmpty(t, r.Details["suggestion"])
}

func TestDirChecker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	r := NewDirChecker("storage", dir).Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDirCheckerNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	r := NewDirChecker("storage", file).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
}

func TestFunc(t *testing.T) {
	ok := Func("config", func(context.Context) (string, error) { return "loaded", nil })
	assert.Equal(t, "config", ok.Name())
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	bad := Func("config", func(context.Context) (string, error) { return "", errors.New("bad yaml") })
	r := bad.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "bad yaml", r.Message)
}
