package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func paginationContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		page     int
		pageSize int
	}{
		{"defaults", "/rooms", 0, 20},
		{"explicit", "/rooms?page=2&size=50", 2, 50},
		{"negative page clamps to zero", "/rooms?page=-3", 0, 20},
		{"oversized page size falls back", "/rooms?size=500", 0, 20},
		{"garbage falls back", "/rooms?page=abc&size=xyz", 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := GetPaginationParams(paginationContext(tt.target))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.pageSize, params.PageSize)
		})
	}
}
