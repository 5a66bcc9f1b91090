package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Caller roles recognized by this service. Roles are assigned by the
// external auth service and arrive in the JWT's "role" claim. ADMIN is
// accepted wherever CASHIER is, so back-office staff can operate the
// cashier endpoints.
const (
	RoleCustomer = "CUSTOMER"
	RoleCashier  = "CASHIER"
	RoleAdmin    = "ADMIN"
)

// RequireRole returns a middleware that enforces that the
// authenticated caller has one of the specified roles. It assumes
// JWTAuth already extracted the role into the context under "role";
// requests with a missing or unknown role are rejected with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
