package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableside-api/internal/domain/repository"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

// OutletSlugHeader names the outlet when the API is not reached through a subdomain
const OutletSlugHeader = "X-Outlet-Slug"

// ExtractOutletFromHost extracts the outlet slug from a subdomain
// e.g., "harbor-grill.tableside.app" -> "harbor-grill"
func ExtractOutletFromHost(host string) (string, error) {
	// Remove port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return "", errors.New("invalid subdomain")
	}
	return parts[0], nil
}

// outletSlug resolves the slug from the route, the header, then the subdomain
func outletSlug(c *gin.Context) string {
	if slug := c.Param("slug"); slug != "" {
		return slug
	}
	if slug := strings.TrimSpace(c.GetHeader(OutletSlugHeader)); slug != "" {
		return slug
	}
	slug, err := ExtractOutletFromHost(c.Request.Host)
	if err != nil {
		return ""
	}
	return slug
}

// OutletMiddleware resolves the outlet and scopes the request context to it
func OutletMiddleware(outlets repository.OutletRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := outletSlug(c)
		if slug == "" {
			c.Next()
			return
		}

		outlet, err := outlets.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if outlet == nil {
			response.NotFound(c, "Outlet not found")
			c.Abort()
			return
		}

		// Staff tokens bound to an outlet only work there
		if bound, ok := c.Get("token_outlet_id"); ok {
			if id, ok := bound.(uuid.UUID); ok && id != outlet.ID {
				response.Forbidden(c, "Access denied to this outlet")
				c.Abort()
				return
			}
		}

		c.Set("outlet_id", outlet.ID)
		c.Set("outlet", outlet)

		ctx := repository.WithOutlet(c.Request.Context(), outlet.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireOutlet ensures a valid outlet context exists
func RequireOutlet() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetOutletID(c) == uuid.Nil {
			response.BadRequest(c, "Outlet context required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetOutletID retrieves the outlet ID from gin context
func GetOutletID(c *gin.Context) uuid.UUID {
	outletID, exists := c.Get("outlet_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := outletID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
