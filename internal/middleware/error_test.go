package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medportal/portal-api/pkg/errors"
)

func serveWithError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	w, body := serveWithError(t, apperrors.Validation("please select a doctor", "please describe your symptoms"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "validation failed", body.Message)
	assert.Equal(t, []string{"please select a doctor", "please describe your symptoms"}, body.Fields)
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	w, body := serveWithError(t, errors.New("pq: connection refused on 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestErrorHandlerStatusPerCode(t *testing.T) {
	w, _ := serveWithError(t, apperrors.NotFoundOrUnauthorized("appointment"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = serveWithError(t, apperrors.Conflict("username already exists"))
	assert.Equal(t, http.StatusConflict, w.Code)
}
