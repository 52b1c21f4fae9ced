package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/session"
	"github.com/medportal/portal-api/pkg/auth"
)

const (
	// ContextIdentity holds the resolved *model.Identity for the request.
	ContextIdentity = "identity"
	// ContextSessionID holds the cookie session id, empty for bearer auth.
	ContextSessionID = "session_id"
)

type AuthMiddleware struct {
	sessions   *session.Store
	jwtSvc     auth.JWTService
	cookieName string
}

func NewAuthMiddleware(sessions *session.Store, jwtSvc auth.JWTService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		jwtSvc:     jwtSvc,
		cookieName: cookieName,
	}
}

// Authenticate resolves the caller identity once per request, from the
// session cookie or a bearer token, and stores it in the gin context.
// Browser requests without a session are redirected to the login page.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			sess, err := m.sessions.Get(c.Request.Context(), cookie)
			if err == nil {
				c.Set(ContextIdentity, &sess.Identity)
				c.Set(ContextSessionID, sess.ID)
				c.Next()
				return
			}
		}

		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"status": "error", "message": "invalid authorization format",
				})
				return
			}
			identity, err := m.jwtSvc.ValidateToken(parts[1])
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"status": "error", "message": "invalid token",
				})
				return
			}
			c.Set(ContextIdentity, identity)
			c.Next()
			return
		}

		if acceptsHTML(c) {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status": "error", "message": "please login to access this page",
		})
	}
}

// RequireRole gates a route group on the caller's role.
func (m *AuthMiddleware) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		if identity == nil || identity.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status": "error", "message": "you do not have permission to access this page",
			})
			return
		}
		c.Next()
	}
}

// Identity returns the resolved caller identity, or nil outside the
// authenticated chain.
func Identity(c *gin.Context) *model.Identity {
	if v, ok := c.Get(ContextIdentity); ok {
		if identity, ok := v.(*model.Identity); ok {
			return identity
		}
	}
	return nil
}

// SessionID returns the cookie session id, empty for bearer-token callers.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
