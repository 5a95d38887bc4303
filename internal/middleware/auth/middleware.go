package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/gldesigns/leather-shop/internal/tokens"
)

const claimsContextKey = "claims"

type AuthMiddleware struct {
	JWTSecret []byte
}

func New(secret []byte) *AuthMiddleware {
	return &AuthMiddleware{JWTSecret: secret}
}

// RequireAuth rejects requests without a valid bearer token before the
// handler runs, and attaches the decoded claims to the context on success.
// Expired and malformed tokens get distinct messages but the same 401.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "no authentication token provided")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.Parse(raw, m.JWTSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication token expired, please log in again")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication token")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// RequireRoles gates a route on the role carried by already-attached claims.
// It never decides from an absent claim set: without one the request is
// unauthenticated, not merely forbidden.
func (m *AuthMiddleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "no authentication token provided")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "you do not have the required permissions")
		}
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(claimsContextKey, claims)
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
}

func ClaimsFromContext(c echo.Context) *tokens.AccessClaims {
	if v, ok := c.Get(claimsContextKey).(*tokens.AccessClaims); ok {
		return v
	}
	return nil
}
