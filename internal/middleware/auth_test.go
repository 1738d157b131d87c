package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupAuthRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth(AuthConfig{TokenAPI: token}))
	r.Use(CompanyID())
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"company_id": GetCompanyID(c)})
	})
	return r
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		companyID  string
		wantStatus int
	}{
		{
			name:       "valid token and company",
			authHeader: "Bearer secret-token",
			companyID:  "company-1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			companyID:  "company-1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic secret-token",
			companyID:  "company-1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong token",
			authHeader: "Bearer wrong",
			companyID:  "company-1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing company header",
			authHeader: "Bearer secret-token",
			companyID:  "",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "case insensitive scheme",
			authHeader: "bearer secret-token",
			companyID:  "company-1",
			wantStatus: http.StatusOK,
		},
	}

	router := setupAuthRouter("secret-token")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.companyID != "" {
				req.Header.Set(HeaderCompanyID, tt.companyID)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCompanyIDAttachedToContext(t *testing.T) {
	router := setupAuthRouter("secret-token")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set(HeaderCompanyID, "acme-corp")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "acme-corp")
}
