package middlewares

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// LoginRateLimiter membatasi percobaan login per IP: 5 per menit.
func LoginRateLimiter() echo.MiddlewareFunc {
	return rateLimiter(rate.Every(12*time.Second), 5, "Terlalu banyak percobaan login. Coba beberapa saat lagi.")
}

// RegisterRateLimiter membatasi pendaftaran per IP: 3 per 5 menit.
func RegisterRateLimiter() echo.MiddlewareFunc {
	return rateLimiter(rate.Every(100*time.Second), 3, "Terlalu banyak percobaan pendaftaran. Tunggu beberapa menit.")
}

func rateLimiter(r rate.Limit, burst int, message string) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      r,
		Burst:     burst,
		ExpiresIn: 5 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return utils.JSON(c, http.StatusForbidden, "Gagal membaca identitas klien", nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return utils.JSON(c, http.StatusTooManyRequests, message, nil)
		},
	})
}
