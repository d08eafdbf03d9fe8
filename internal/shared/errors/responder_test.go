package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errBoom = errors.New("boom")

func serve(t *testing.T, responder *ChainedResponder, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	router := gin.New()
	router.GET("/api/sales/x", func(c *gin.Context) { responder.RespondError(c, err) })
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales/x", nil))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestChainedResponder_UsesFirstMatchingMapper(t *testing.T) {
	responder := NewChainedResponder("https://errors.example.com", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errBoom) {
			return ErrServiceUnavailable.Typed("/problems/boom", "Boom").WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	})

	rec, problem := serve(t, responder, errBoom)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "https://errors.example.com/problems/boom", problem.Type)
	assert.Equal(t, "/api/sales/x", problem.Instance)
}

func TestChainedResponder_FallsBackToInternal(t *testing.T) {
	rec, problem := serve(t, NewChainedResponder(""), errors.New("unexpected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, problem.Type)
	assert.Equal(t, "unexpected", problem.Detail)
}

func TestResponder_ValidationFailedCarriesFields(t *testing.T) {
	router := gin.New()
	router.POST("/api/sales", func(c *gin.Context) {
		NewResponder("").ValidationFailed(c, map[string]string{"items": "min"})
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales", nil))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, map[string]any{"items": "min"}, problem.Extensions["fields"])
}
