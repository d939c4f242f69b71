package middleware

import (
	"fmt"

	"dapp_payroll/types"
	"dapp_payroll/utils"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	ObjPayroll = "payroll"
	ObjBalance = "balance"
	ObjRecords = "records"

	ActRead  = "read"
	ActWrite = "write"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// DefaultPolicy applies when no policy file is configured.
const DefaultPolicy = `
p, role:employee, payroll, read
p, role:hr_admin, payroll, write
p, role:hr_admin, balance, read
p, role:hr_admin, records, read
g, role:hr_admin, role:employee
g, role:super_admin, role:hr_admin
`

type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer loads policy from policyPath, or the built-in policy when the
// path is empty.
func NewAuthorizer(policyPath string) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz model: %w", err)
	}

	var adapter persist.Adapter = stringadapter.NewAdapter(DefaultPolicy)
	if policyPath != "" {
		adapter = fileadapter.NewAdapter(policyPath)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

func subject(role string) string {
	if role == "" {
		role = "anonymous"
	}
	return "role:" + role
}

func (a *Authorizer) Allowed(role, obj, act string) (bool, error) {
	return a.enforcer.Enforce(subject(role), obj, act)
}

// Require must run after RequireAuth.
func (a *Authorizer) Require(obj, act string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		ok, err := a.Allowed(role, obj, act)
		if err != nil {
			utils.Logger.Error("Authorization check failed", zap.String("role", role), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(types.APIResponse{
				Success: false,
				Message: types.ErrInternalError,
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(types.APIResponse{
				Success: false,
				Message: types.ErrForbidden,
			})
		}
		return c.Next()
	}
}
