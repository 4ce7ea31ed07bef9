package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// HTTPErrorHandler merender error echo (404, 405, body terlalu besar, dll.) dengan envelope standar.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprint(he.Message)
		} else {
			logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Request().URL.Path))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = utils.JSON(c, code, message, nil)
		}
		if err != nil {
			logger.Warn("gagal menulis response error", zap.Error(err))
		}
	}
}
