package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adityarizkyr/cinetix/internal/middleware"
)

// currentUserID extracts the authenticated user's ID from the context.
// JWTAuth stores the raw "sub" claim, which arrives as a string or a
// JSON number depending on the issuer.
func currentUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	}
	return 0, false
}

// isStaff reports whether the caller holds a role that bypasses
// booking ownership checks.
func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == middleware.RoleCashier || role == middleware.RoleAdmin
}
