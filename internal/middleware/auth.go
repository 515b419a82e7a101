package middleware

import (
	"strings"

	"comptabilite/internal/apperror"
	"comptabilite/internal/service"
	"comptabilite/pkg/response"

	"github.com/gin-gonic/gin"
)

// principalKey is where Authenticate stores the verified Claims for the
// remainder of the request. Nothing outlives the gin context.
const principalKey = "principal"

// Authenticate is the first guard of every protected route. It parses
// the Authorization header, delegates to the token service, and aborts
// with 401 on any failure — before any handler or storage work runs.
// Which of the token failure kinds occurred is not distinguishable from
// the status code, only from the message.
func Authenticate(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperror.ErrMissingToken)
			return
		}

		// Exactly two whitespace-separated parts, scheme "bearer" in any case.
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, apperror.E(apperror.ErrMalformedToken, "invalid authorization format, expected 'Bearer <token>'"))
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(principalKey, claims)
		c.Next()
	}
}

// RequireRole permits continuation only when the authenticated principal
// carries one of the allowed roles. It must be registered after
// Authenticate: a caller with no credential is unauthenticated, never
// forbidden, so the missing-principal case answers 401.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			abort(c, apperror.ErrUnauthenticated)
			return
		}

		for _, role := range allowedRoles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abort(c, apperror.ErrForbidden)
	}
}

// Principal returns the verified claims attached by Authenticate.
func Principal(c *gin.Context) (*service.Claims, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}

func abort(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.AbortWithStatusJSON(status, response.Fail(err.Error()))
}
