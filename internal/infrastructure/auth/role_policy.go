package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/marketplace/backend/internal/domain/identity"
	"go.uber.org/zap"
)

const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

// CasbinRolePolicy answers role/action questions from a casbin RBAC model.
// admin inherits contributor, contributor inherits viewer.
type CasbinRolePolicy struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

var _ identity.RolePolicy = (*CasbinRolePolicy)(nil)

// NewCasbinRolePolicy builds the enforcer with the project role matrix
func NewCasbinRolePolicy(logger *zap.Logger) (*CasbinRolePolicy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	policies := [][]string{
		{string(identity.RoleViewer), string(identity.ActionRead)},
		{string(identity.RoleContributor), string(identity.ActionWrite)},
		{string(identity.RoleContributor), string(identity.ActionModify)},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	groupings := [][]string{
		{string(identity.RoleAdmin), string(identity.RoleContributor)},
		{string(identity.RoleContributor), string(identity.RoleViewer)},
	}
	if _, err := e.AddGroupingPolicies(groupings); err != nil {
		return nil, fmt.Errorf("failed to load role hierarchy: %w", err)
	}

	return &CasbinRolePolicy{enforcer: e, logger: logger}, nil
}

// Allows reports whether role may perform action
func (p *CasbinRolePolicy) Allows(role identity.Role, action identity.Action) bool {
	if role == identity.RoleNotSet {
		return false
	}
	ok, err := p.enforcer.Enforce(string(role), string(action))
	if err != nil {
		p.logger.Error("Policy evaluation failed",
			zap.String("role", string(role)),
			zap.String("action", string(action)),
			zap.Error(err))
		return false
	}
	return ok
}
