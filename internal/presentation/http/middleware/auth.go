package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tableside-api/pkg/utils"
)

// Permissions carried in staff tokens
const (
	PermTakeOrders      = "take-orders"
	PermUpdateKitchen   = "update-kitchen"
	PermManageBills     = "manage-bills"
	PermManageCustomers = "manage-customers"
	PermViewReports     = "view-reports"
	PermManageOutlet    = "manage-outlet"
)

// RoleOwner holds every permission
const RoleOwner = "owner"

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Set("user_permissions", claims.Permissions)
		if claims.OutletID != nil {
			c.Set("token_outlet_id", *claims.OutletID)
		}

		c.Next()
	}
}

// RequirePermission lets the request through if the user holds any of permissions
func RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasRole(c, RoleOwner) {
			c.Next()
			return
		}

		granted, ok := c.Get("user_permissions")
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}
		userPermissions, ok := granted.([]string)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, p := range userPermissions {
			for _, required := range permissions {
				if p == required {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, "You do not have permission to perform this action")
		c.Abort()
	}
}

func hasRole(c *gin.Context, role string) bool {
	roles, ok := c.Get("user_roles")
	if !ok {
		return false
	}
	list, ok := roles.([]string)
	if !ok {
		return false
	}
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}
