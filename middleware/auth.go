package middleware

import (
	"errors"
	"fmt"
	"strings"

	"dapp_payroll/config"
	"dapp_payroll/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleHRAdmin    = "hr_admin"
	RoleEmployee   = "employee"
)

// Claims is the payload of tokens issued by the platform's login service.
type Claims struct {
	EmployeeDID   string `json:"employee_did"`
	Role          string `json:"role,omitempty"`
	RoleID        string `json:"role_id,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	jwt.RegisteredClaims
}

func extractToken(c *fiber.Ctx) (string, error) {
	auth := c.Get("Authorization")
	if auth == "" {
		return "", errors.New("No token provided")
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("Invalid token format")
	}

	return parts[1], nil
}

// ResolveRole maps the configured role ids onto policy roles. Tokens without a
// known role id fall back to their role name, then to employee.
func ResolveRole(claims *Claims) string {
	switch {
	case claims.RoleID != "" && claims.RoleID == config.AppConfig.SuperAdminRoleID:
		return RoleSuperAdmin
	case claims.RoleID != "" && claims.RoleID == config.AppConfig.HRAdminRoleID:
		return RoleHRAdmin
	case claims.Role != "":
		return strings.ToLower(claims.Role)
	default:
		return RoleEmployee
	}
}

func RequireAuth(c *fiber.Ctx) error {
	token, err := extractToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.APIResponse{
			Success: false,
			Message: types.ErrUnauthorized,
			Error:   err.Error(),
		})
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil || claims.EmployeeDID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(types.APIResponse{
			Success: false,
			Message: types.ErrUnauthorized,
			Error:   "Invalid or expired token",
		})
	}

	// Add claims to context for use in handlers
	c.Locals("employee_did", claims.EmployeeDID)
	c.Locals("role", ResolveRole(claims))
	c.Locals("claims", claims)

	return c.Next()
}

// ActorID is the authenticated employee, empty before RequireAuth.
func ActorID(c *fiber.Ctx) string {
	id, _ := c.Locals("employee_did").(string)
	return id
}
