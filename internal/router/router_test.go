package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	// Setup only wires handlers; nothing here touches the database.
	Setup(engine, nil, Config{})
	return engine
}

// The front-end calls these exact paths, so a rename on either side breaks
// the kiosk and the back office. Registered-but-protected routes answer 401,
// an unregistered one would answer 404.
func TestStaffRoutePaths(t *testing.T) {
	engine := testEngine(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/loans/open"},
		{http.MethodPost, "/api/loans/return/1"},
		{http.MethodPost, "/api/inventory/start"},
		{http.MethodGet, "/api/stock"},
		{http.MethodGet, "/api/volunteers"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestMeAnonymousAnswersOkFalse(t *testing.T) {
	engine := testEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
}
