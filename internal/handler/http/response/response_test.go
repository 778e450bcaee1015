package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageMeta(t *testing.T) {
	tests := []struct {
		name string
		in   validator.PageInfo
		want Meta
	}{
		{"empty listing", validator.PageInfo{Page: 1, Limit: 20}, Meta{Page: 1, Limit: 20}},
		{"exact pages", validator.PageInfo{Page: 1, Limit: 20, TotalItems: 40}, Meta{Page: 1, Limit: 20, TotalItems: 40, TotalPages: 2}},
		{"partial last page", validator.PageInfo{Page: 3, Limit: 20, TotalItems: 41}, Meta{Page: 3, Limit: 20, TotalItems: 41, TotalPages: 3}},
		{"no limit", validator.PageInfo{Page: 1, TotalItems: 5}, Meta{Page: 1, TotalItems: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *PageMeta(tt.in))
		})
	}
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()

	SuccessWithMeta(rec, []string{"a"}, PageMeta(validator.PageInfo{Page: 1, Limit: 1, TotalItems: 2}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}
