package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Guard validates access tokens minted by the auth collaborator. Only the
// HS256 access secret is shared with this service; token issuance and refresh
// live elsewhere.
type Guard struct {
	JWTSecret []byte
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := g.parseToken(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func (g *Guard) parseToken(c echo.Context) (jwt.MapClaims, error) {
	raw := tokenFromRequest(c)
	if raw == "" {
		return nil, fmt.Errorf("no token provided")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return g.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	return claims, nil
}

func tokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie("accessToken"); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(string); ok {
		c.Set("userID", sub)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}
