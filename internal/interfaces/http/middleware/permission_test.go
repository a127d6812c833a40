package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) CanCreate(ctx context.Context, p identity.Principal, projectUUID uuid.UUID) bool {
	return m.Called(ctx, p, projectUUID).Bool(0)
}

func (m *mockAuthorizer) CanAccessObject(ctx context.Context, p identity.Principal, method string, projectUUID uuid.UUID) bool {
	return m.Called(ctx, p, method, projectUUID).Bool(0)
}

func (m *mockAuthorizer) IsInternalOperator(p identity.Principal) bool {
	return m.Called(p).Bool(0)
}

// withPrincipal stands in for JWTAuth
func withPrincipal(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email != "" {
			c.Set(JWTPrincipalKey, identity.Principal{Email: email})
		}
		c.Next()
	}
}

// =============================================================================
// Internal operator
// =============================================================================

func TestRequireInternalOperator(t *testing.T) {
	operator := identity.Principal{Email: "crm@example.com"}
	authz := new(mockAuthorizer)
	authz.On("IsInternalOperator", operator).Return(true)
	authz.On("IsInternalOperator", mock.Anything).Return(false)

	tests := []struct {
		name   string
		email  string
		status int
	}{
		{"operator passes", "crm@example.com", http.StatusOK},
		{"other user denied", "user@example.com", http.StatusForbidden},
		{"anonymous denied", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(withPrincipal(tt.email), RequireInternalOperator(authz, zap.NewNop()))
			router.GET("/internal", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
			}
		})
	}
}

// =============================================================================
// Project access
// =============================================================================

func TestRequireProjectAccess(t *testing.T) {
	project := uuid.New()
	user := identity.Principal{Email: "user@example.com"}

	authz := new(mockAuthorizer)
	authz.On("CanAccessObject", mock.Anything, user, http.MethodGet, project).Return(true)
	authz.On("CanAccessObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false)

	var seenProject string
	router := gin.New()
	router.Use(withPrincipal(user.Email), RequireProjectAccess(authz, nil))
	router.GET("/my-apps", func(c *gin.Context) {
		seenProject = logger.ProjectUUID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("authorized project", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/my-apps?project_uuid="+project.String(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, project.String(), seenProject)
	})

	t.Run("unknown project", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/my-apps?project_uuid="+uuid.NewString(), nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing project", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/my-apps", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
