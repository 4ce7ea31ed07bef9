package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// RequireRole memeriksa role pada klaim JWT. Dipasang setelah JWTMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return utils.JSON(c, http.StatusUnauthorized, "Missing or invalid JWT claims", nil)
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return utils.ErrorJSON(c, utils.ErrForbidden, "")
		}
	}
}
