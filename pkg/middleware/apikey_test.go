package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mongoapi/mongoapi/internal/apikey"
	"github.com/mongoapi/mongoapi/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newAPIKeyEngine() *gin.Engine {
	g := gin.New()
	keys := apikey.NewKeySet([]string{"good-key", "other-key"})
	g.POST("/users/find", APIKeyMiddleware(keys), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"key": c.GetString(APIKeyContextKey)})
	})
	return g
}

func acceptedKey(t *testing.T, rw *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	return got["key"]
}

func TestAPIKeyMiddleware_NoKey(t *testing.T) {
	g := newAPIKeyEngine()
	before := testutil.ToFloat64(metrics.AuthRejected)

	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/users/find", nil))

	require.Equal(t, http.StatusForbidden, rw.Code)
	require.JSONEq(t, `{"detail":"Invalid API key"}`, rw.Body.String())
	require.Equal(t, before+1, testutil.ToFloat64(metrics.AuthRejected))
}

func TestAPIKeyMiddleware_InvalidKeyEverywhere(t *testing.T) {
	g := newAPIKeyEngine()
	req := httptest.NewRequest(http.MethodPost, "/users/find?api_key=bad", nil)
	req.Header.Set(APIKeyHeader, "bad")
	req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "bad"})
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusForbidden, rw.Code)
}

func TestAPIKeyMiddleware_Header(t *testing.T) {
	g := newAPIKeyEngine()
	req := httptest.NewRequest(http.MethodPost, "/users/find", nil)
	req.Header.Set(APIKeyHeader, "good-key")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, "good-key", acceptedKey(t, rw))
}

func TestAPIKeyMiddleware_Query(t *testing.T) {
	g := newAPIKeyEngine()
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/users/find?api_key=other-key", nil))

	require.Equal(t, "other-key", acceptedKey(t, rw))
}

func TestAPIKeyMiddleware_Cookie(t *testing.T) {
	g := newAPIKeyEngine()
	req := httptest.NewRequest(http.MethodPost, "/users/find", nil)
	req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "good-key"})
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, "good-key", acceptedKey(t, rw))
}

func TestAPIKeyMiddleware_HeaderTakesPrecedence(t *testing.T) {
	g := newAPIKeyEngine()
	req := httptest.NewRequest(http.MethodPost, "/users/find?api_key=other-key", nil)
	req.Header.Set(APIKeyHeader, "good-key")
	req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "other-key"})
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, "good-key", acceptedKey(t, rw))
}

func TestAPIKeyMiddleware_InvalidHeaderFallsBackToCookie(t *testing.T) {
	g := newAPIKeyEngine()
	req := httptest.NewRequest(http.MethodPost, "/users/find", nil)
	req.Header.Set(APIKeyHeader, "bad")
	req.AddCookie(&http.Cookie{Name: APIKeyCookie, Value: "other-key"})
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, "other-key", acceptedKey(t, rw))
}
