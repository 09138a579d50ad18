// speddy/internal/handlers/pagination_test.go

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c
}

func TestPageParams(t *testing.T) {
	page, size := pageParams(queryContext(t, "/api/students"))
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size, "a default page holds a whole caseload")

	page, size = pageParams(queryContext(t, "/api/students?page=0&pageSize=500"))
	assert.Equal(t, 1, page)
	assert.Equal(t, MaxPageSize, size)

	page, size = pageParams(queryContext(t, "/api/students?page=3&pageSize=10"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, size)
}

func TestCreatePaginatedResponseCounters(t *testing.T) {
	c := queryContext(t, "/api/students?page=2&pageSize=10")
	resp := CreatePaginatedResponse(c, []string{"a"}, 31)
	assert.Equal(t, int64(31), resp.TotalRows)
	assert.Equal(t, 4, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	assert.Equal(t, 10, resp.PageSize)

	empty := CreatePaginatedResponse(queryContext(t, "/api/students"), nil, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
