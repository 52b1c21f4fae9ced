package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Bearer-token callers carry no session, so a mutation answers inline
// instead of stashing a flash and redirecting.
func TestFlashAndRedirectInlineForBearerCallers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &BaseHandler{}
	r := gin.New()
	r.POST("/things", func(c *gin.Context) {
		h.FlashAndRedirect(c, "Thing created successfully!", "/things", gin.H{"id": 1})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/things", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thing created successfully!")
	assert.Empty(t, w.Header().Get("Location"))
}

func TestPopFlashEmptyWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &BaseHandler{}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/things", nil)

	assert.Empty(t, h.PopFlash(c))
}
