package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// ContextKeyClaims adalah key echo.Context tempat klaim JWT disimpan.
const ContextKeyClaims = "claims"

// TokenValidator dipenuhi oleh *utils.JWTManager.
type TokenValidator interface {
	ValidateToken(token string) (*utils.Claims, error)
}

// JWTMiddleware mewajibkan header Authorization: Bearer <token>.
func JWTMiddleware(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.JSON(c, http.StatusUnauthorized, "Authorization header missing", nil)
			}
			tokenStr, ok := bearerToken(authHeader)
			if !ok {
				return utils.JSON(c, http.StatusUnauthorized, "Invalid authorization header", nil)
			}
			claims, err := v.ValidateToken(tokenStr)
			if err != nil {
				return utils.JSON(c, http.StatusUnauthorized, "Invalid token: "+err.Error(), nil)
			}
			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// OptionalJWTMiddleware menyimpan klaim bila token valid dikirim; tanpa token request tetap diteruskan.
// Token yang dikirim tetapi tidak valid tetap ditolak.
func OptionalJWTMiddleware(v TokenValidator) echo.MiddlewareFunc {
	required := JWTMiddleware(v)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withToken := required(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			return withToken(c)
		}
	}
}

// GetClaims mengembalikan klaim JWT dari context, atau nil.
func GetClaims(c echo.Context) *utils.Claims {
	claims, _ := c.Get(ContextKeyClaims).(*utils.Claims)
	return claims
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
