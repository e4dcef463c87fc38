package openapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	e := echo.New()
	RegisterRoutes(e)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
		wantHeader string
	}{
		{
			name:       "serves swagger ui",
			path:       "/swagger/index.html",
			wantStatus: http.StatusOK,
			wantBody:   `url: "/openapi.json"`,
		},
		{
			name:       "redirects bare path",
			path:       "/swagger",
			wantStatus: http.StatusMovedPermanently,
			wantHeader: "/swagger/index.html",
		},
		{
			name:       "redirects trailing slash",
			path:       "/swagger/",
			wantStatus: http.StatusMovedPermanently,
			wantHeader: "/swagger/index.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if tt.wantHeader != "" {
				assert.Equal(t, tt.wantHeader, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}
