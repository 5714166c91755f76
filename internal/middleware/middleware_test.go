package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiaire_backend/pkg/utils"
)

func protectedRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/", middlewares...)
	group.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	group.POST("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return engine
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	engine := protectedRouter(AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareAcceptsCookie(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	token, err := utils.GenerateSessionToken(7, "admin@pc.fr", "Admin", "admin")
	require.NoError(t, err)
	engine := protectedRouter(AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareAcceptsBearerHeader(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	token, err := utils.GenerateSessionToken(7, "admin@pc.fr", "Admin", "admin")
	require.NoError(t, err)
	engine := protectedRouter(AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	engine := protectedRouter(AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddlewarePassesAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/whoami", OptionalAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "public")
}

func TestOptionalAuthMiddlewareResolvesValidToken(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	token, err := utils.GenerateSessionToken(7, "admin@pc.fr", "Admin", "admin")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/whoami", OptionalAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c), "id": UserID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@pc.fr")
}

func TestRoleAuthMiddleware(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	staffToken, err := utils.GenerateSessionToken(7, "staff@pc.fr", "Staff", "staff")
	require.NoError(t, err)
	adminToken, err := utils.GenerateSessionToken(8, "admin@pc.fr", "Admin", "admin")
	require.NoError(t, err)
	engine := protectedRouter(AuthMiddleware(), RoleAuthMiddleware("admin"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: staffToken})
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: adminToken})
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddlewareAllowsSafeMethods(t *testing.T) {
	engine := protectedRouter(CSRFMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddlewareEnforcesDoubleSubmit(t *testing.T) {
	engine := protectedRouter(CSRFMiddleware())

	// No token at all.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Cookie and header disagree.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "aaa"})
	req.Header.Set(CSRFHeaderName, "bbb")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Matching pair passes.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "aaa"})
	req.Header.Set(CSRFHeaderName, "aaa")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActorFallsBackToPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "public", Actor(c))
	assert.Equal(t, int64(0), UserID(c))

	c.Set("userEmail", "admin@pc.fr")
	c.Set("userID", int64(7))
	assert.Equal(t, "admin@pc.fr", Actor(c))
	assert.Equal(t, int64(7), UserID(c))
}
