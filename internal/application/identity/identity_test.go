package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

type MockAuthorizationRepository struct {
	mock.Mock
}

func (m *MockAuthorizationRepository) FindByUserAndProject(ctx context.Context, email string, projectUUID uuid.UUID) (*identity.ProjectAuthorization, error) {
	args := m.Called(ctx, email, projectUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.ProjectAuthorization), args.Error(1)
}

func (m *MockAuthorizationRepository) ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]*identity.ProjectAuthorization, error) {
	args := m.Called(ctx, projectUUID)
	return args.Get(0).([]*identity.ProjectAuthorization), args.Error(1)
}

func (m *MockAuthorizationRepository) Save(ctx context.Context, auth *identity.ProjectAuthorization) error {
	return m.Called(ctx, auth).Error(0)
}

func (m *MockAuthorizationRepository) Delete(ctx context.Context, email string, projectUUID uuid.UUID) error {
	return m.Called(ctx, email, projectUUID).Error(0)
}

// ladderPolicy mirrors the production role hierarchy
type ladderPolicy struct{}

func (ladderPolicy) Allows(role identity.Role, action identity.Action) bool {
	switch role {
	case identity.RoleAdmin, identity.RoleContributor:
		return true
	case identity.RoleViewer:
		return action == identity.ActionRead
	}
	return false
}

func newEvaluator(repo identity.AuthorizationRepository, ops OperatorConfig) *PermissionEvaluator {
	return NewPermissionEvaluator(repo, ladderPolicy{}, ops, zap.NewNop())
}

func authFor(t *testing.T, email string, project uuid.UUID, role identity.Role) *identity.ProjectAuthorization {
	t.Helper()
	a, err := identity.NewProjectAuthorization(email, project, role)
	require.NoError(t, err)
	return a
}

// =============================================================================
// PermissionEvaluator
// =============================================================================

func TestPermissionEvaluator_DeniesWithoutAuthorization(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()
	repo := new(MockAuthorizationRepository)
	repo.On("FindByUserAndProject", ctx, "user@example.com", project).Return(nil, identity.ErrAuthorizationNotFound)

	e := newEvaluator(repo, OperatorConfig{})

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
		assert.False(t, e.CanAccessObject(ctx, identity.Principal{Email: "user@example.com"}, method, project), method)
	}
	assert.False(t, e.CanCreate(ctx, identity.Principal{Email: "user@example.com"}, project))
}

func TestPermissionEvaluator_RepositoryErrorDenies(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()
	repo := new(MockAuthorizationRepository)
	repo.On("FindByUserAndProject", ctx, "user@example.com", project).Return(nil, errors.New("connection refused"))

	e := newEvaluator(repo, OperatorConfig{})
	assert.False(t, e.CanAccessObject(ctx, identity.Principal{Email: "user@example.com"}, http.MethodGet, project))
}

func TestPermissionEvaluator_RoleOrdering(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()

	tests := []struct {
		role   identity.Role
		read   bool
		write  bool
		modify bool
	}{
		{identity.RoleNotSet, false, false, false},
		{identity.RoleViewer, true, false, false},
		{identity.RoleContributor, true, true, true},
		{identity.RoleAdmin, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			repo := new(MockAuthorizationRepository)
			repo.On("FindByUserAndProject", ctx, "user@example.com", project).
				Return(authFor(t, "user@example.com", project, tt.role), nil)
			e := newEvaluator(repo, OperatorConfig{})
			p := identity.Principal{Email: "User@Example.com"}

			assert.Equal(t, tt.read, e.CanAccessObject(ctx, p, http.MethodGet, project))
			assert.Equal(t, tt.write, e.CanCreate(ctx, p, project))
			assert.Equal(t, tt.modify, e.CanAccessObject(ctx, p, http.MethodDelete, project))
			assert.Equal(t, tt.modify, e.CanAccessObject(ctx, p, http.MethodPatch, project))
		})
	}
}

func TestPermissionEvaluator_AnonymousAndMissingProject(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAuthorizationRepository)
	e := newEvaluator(repo, OperatorConfig{})

	assert.False(t, e.CanCreate(ctx, identity.Anonymous(), uuid.New()))
	assert.False(t, e.CanCreate(ctx, identity.Principal{Email: "user@example.com"}, uuid.Nil))
	assert.False(t, e.CanAccessObject(ctx, identity.Principal{Email: "user@example.com"}, "TRACE", uuid.New()))
	repo.AssertNotCalled(t, "FindByUserAndProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestPermissionEvaluator_IsInternalOperator(t *testing.T) {
	ops := OperatorConfig{AllowCRMAccess: true, CRMEmails: []string{"crm@example.com"}}

	e := newEvaluator(new(MockAuthorizationRepository), ops)
	assert.True(t, e.IsInternalOperator(identity.Principal{Email: "CRM@example.com"}))
	assert.False(t, e.IsInternalOperator(identity.Principal{Email: "other@example.com"}))
	assert.False(t, e.IsInternalOperator(identity.Anonymous()))

	ops.AllowCRMAccess = false
	e = newEvaluator(new(MockAuthorizationRepository), ops)
	assert.False(t, e.IsInternalOperator(identity.Principal{Email: "crm@example.com"}))
}

// =============================================================================
// AuthorizationService
// =============================================================================

func TestAuthorizationService_GrantRoleCreates(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()
	repo := new(MockAuthorizationRepository)
	repo.On("FindByUserAndProject", ctx, "new@example.com", project).Return(nil, identity.ErrAuthorizationNotFound)
	repo.On("Save", ctx, mock.MatchedBy(func(a *identity.ProjectAuthorization) bool {
		return a.UserEmail == "new@example.com" && a.Role == identity.RoleViewer
	})).Return(nil)

	svc := NewAuthorizationService(repo, zap.NewNop())
	resp, err := svc.GrantRole(ctx, GrantRoleRequest{UserEmail: "New@example.com", ProjectUUID: project, Role: "viewer"})

	require.NoError(t, err)
	assert.Equal(t, "viewer", resp.Role)
	repo.AssertExpectations(t)
}

func TestAuthorizationService_GrantRoleUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()
	existing := authFor(t, "user@example.com", project, identity.RoleViewer)

	repo := new(MockAuthorizationRepository)
	repo.On("FindByUserAndProject", ctx, "user@example.com", project).Return(existing, nil)
	repo.On("Save", ctx, existing).Return(nil)

	svc := NewAuthorizationService(repo, zap.NewNop())
	resp, err := svc.GrantRole(ctx, GrantRoleRequest{UserEmail: "user@example.com", ProjectUUID: project, Role: "admin"})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	assert.Equal(t, identity.RoleAdmin, existing.Role)
}

func TestAuthorizationService_GrantRoleRejectsUnknownRole(t *testing.T) {
	repo := new(MockAuthorizationRepository)
	svc := NewAuthorizationService(repo, zap.NewNop())

	_, err := svc.GrantRole(context.Background(), GrantRoleRequest{UserEmail: "user@example.com", ProjectUUID: uuid.New(), Role: "owner"})
	assert.ErrorIs(t, err, identity.ErrInvalidRole)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthorizationService_RevokeRole(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()
	repo := new(MockAuthorizationRepository)
	repo.On("FindByUserAndProject", ctx, "user@example.com", project).
		Return(authFor(t, "user@example.com", project, identity.RoleAdmin), nil)
	repo.On("Delete", ctx, "user@example.com", project).Return(nil)

	svc := NewAuthorizationService(repo, zap.NewNop())
	require.NoError(t, svc.RevokeRole(ctx, " USER@example.com ", project))
	repo.AssertExpectations(t)

	missing := new(MockAuthorizationRepository)
	missing.On("FindByUserAndProject", ctx, "ghost@example.com", project).Return(nil, identity.ErrAuthorizationNotFound)
	svc = NewAuthorizationService(missing, zap.NewNop())
	assert.ErrorIs(t, svc.RevokeRole(ctx, "ghost@example.com", project), identity.ErrAuthorizationNotFound)
}

func TestAuthorizationService_ListByProject(t *testing.T) {
	ctx := context.Background()
	project := uuid.New()
	repo := new(MockAuthorizationRepository)
	repo.On("ListByProject", ctx, project).Return([]*identity.ProjectAuthorization{
		authFor(t, "a@example.com", project, identity.RoleAdmin),
		authFor(t, "b@example.com", project, identity.RoleViewer),
	}, nil)

	svc := NewAuthorizationService(repo, zap.NewNop())
	list, err := svc.ListByProject(ctx, project)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@example.com", list[0].UserEmail)
}
