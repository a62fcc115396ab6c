package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, allowed []string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(allowed))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAllowsConfiguredOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://portal.example.gov")

	rec := serve(t, []string{"https://portal.example.gov"}, req)
	assert.Equal(t, "https://portal.example.gov", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSkipsUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")

	rec := serve(t, []string{"https://portal.example.gov"}, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExposesPortalHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://portal.example.gov")

	rec := serve(t, nil, req)
	// The browser wizard sends and reads the draft session header, and
	// export downloads need the filename from Content-Disposition.
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Draft-Session")
	expose := rec.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, expose, "X-Draft-Session")
	assert.Contains(t, expose, "Content-Disposition")
}

func TestPreflightShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://portal.example.gov")

	rec := serve(t, nil, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
