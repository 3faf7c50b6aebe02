package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

type staticValidator map[string]*models.JWTClaims

func (v staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := staticValidator{
		"admin-token":  {UserID: "u-admin", Role: models.RoleAdmin},
		"editor-token": {UserID: "u-editor", Role: models.RoleEditor},
		"user-token":   {UserID: "u-user", Role: models.RoleUser},
	}
	r := gin.New()
	r.GET("/public", OptionalJWT(validator), func(c *gin.Context) {
		if _, ok := c.Get(ContextUserKey); ok {
			c.String(http.StatusOK, "member")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.POST("/events", JWT(validator), RequireEditor(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/sedes/:id", JWT(validator), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoleGates(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/events", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/events", "forged").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/events", "user-token").Code)
	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/events", "editor-token").Code)
	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/events", "admin-token").Code)

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodDelete, "/sedes/sede-central", "editor-token").Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/sedes/sede-central", "admin-token").Code)
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req.Header.Set("Authorization", "Token editor-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header")
}

func TestOptionalJWT(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/public", "").Body.String())
	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/public", "forged").Body.String())
	assert.Equal(t, "member", perform(r, http.MethodGet, "/public", "user-token").Body.String())
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/x", "").Code)
}
