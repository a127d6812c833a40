package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthorizationRouter(auths *mockAuthorizations) http.Handler {
	h := NewAuthorizationHandler(auths)
	r := newTestRouter()
	g := r.Group("/internal/projects/:project_uuid/authorizations")
	g.GET("", h.List)
	g.PUT("", h.Put)
	g.GET("/:email", h.Get)
	g.DELETE("/:email", h.Delete)
	return r
}

// =============================================================================
// Project authorizations
// =============================================================================

func TestAuthorizationHandler_Put_PathProjectWins(t *testing.T) {
	project := uuid.New()
	auths := new(mockAuthorizations)
	auths.On("GrantRole", mock.Anything, identityapp.GrantRoleRequest{
		UserEmail:   "member@example.com",
		ProjectUUID: project,
		Role:        "contributor",
	}).Return(&identityapp.AuthorizationResponse{UserEmail: "member@example.com", ProjectUUID: project, Role: "contributor"}, nil)

	r := newAuthorizationRouter(auths)
	w := doJSON(r, http.MethodPut, "/internal/projects/"+project.String()+"/authorizations",
		`{"user_email":"member@example.com","project_uuid":"`+uuid.NewString()+`","role":"contributor"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp identityapp.AuthorizationResponse
	decodeData(t, w, &resp)
	assert.Equal(t, project, resp.ProjectUUID)
	auths.AssertExpectations(t)
}

func TestAuthorizationHandler_Put_InvalidEmail(t *testing.T) {
	auths := new(mockAuthorizations)
	r := newAuthorizationRouter(auths)

	w := doJSON(r, http.MethodPut, "/internal/projects/"+uuid.NewString()+"/authorizations",
		`{"user_email":"not-an-email","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	auths.AssertNotCalled(t, "GrantRole", mock.Anything, mock.Anything)
}

func TestAuthorizationHandler_Get(t *testing.T) {
	project := uuid.New()
	auths := new(mockAuthorizations)
	auths.On("GetRole", mock.Anything, "member@example.com", project).
		Return(&identityapp.AuthorizationResponse{Role: "viewer"}, nil)
	auths.On("GetRole", mock.Anything, "ghost@example.com", project).
		Return(nil, shared.NewNotFoundError("authorization"))

	r := newAuthorizationRouter(auths)
	base := "/internal/projects/" + project.String() + "/authorizations/"

	w := doJSON(r, http.MethodGet, base+"member@example.com", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, base+"ghost@example.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorizationHandler_ListAndDelete(t *testing.T) {
	project := uuid.New()
	auths := new(mockAuthorizations)
	auths.On("ListByProject", mock.Anything, project).
		Return([]identityapp.AuthorizationResponse{{Role: "admin"}, {Role: "viewer"}}, nil)
	auths.On("RevokeRole", mock.Anything, "member@example.com", project).Return(nil)

	r := newAuthorizationRouter(auths)
	base := "/internal/projects/" + project.String() + "/authorizations"

	w := doJSON(r, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []identityapp.AuthorizationResponse
	decodeData(t, w, &list)
	assert.Len(t, list, 2)

	w = doJSON(r, http.MethodDelete, base+"/member@example.com", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	auths.AssertExpectations(t)
}

// =============================================================================
// Health
// =============================================================================

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		status int
	}{
		{"no checks", nil, http.StatusOK},
		{"all healthy", map[string]HealthCheck{
			"database": func(_ context.Context) error { return nil },
			"redis":    func(_ context.Context) error { return nil },
		}, http.StatusOK},
		{"one failing", map[string]HealthCheck{
			"database": func(_ context.Context) error { return nil },
			"redis":    func(_ context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("test", tt.checks)
			r := newTestRouter()
			r.GET("/health", h.Health)

			w := doJSON(r, http.MethodGet, "/health", "")
			assert.Equal(t, tt.status, w.Code)

			var envelope struct {
				Data HealthResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, "test", envelope.Data.Version)
			assert.Len(t, envelope.Data.Checks, len(tt.checks))
			if tt.status == http.StatusServiceUnavailable {
				assert.Equal(t, "unhealthy", envelope.Data.Status)
				assert.Equal(t, "connection refused", envelope.Data.Checks["redis"])
			}
		})
	}
}
