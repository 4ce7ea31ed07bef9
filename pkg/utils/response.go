package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound     = errors.New("data tidak ditemukan")
	ErrConflict     = errors.New("data sudah ada")
	ErrUnauthorized = errors.New("kredensial tidak valid")
	ErrFileTooLarge = errors.New("ukuran file melebihi batas")
	ErrForbidden    = errors.New("anda tidak memiliki hak akses")
	ErrStorage      = errors.New("penyimpanan file gagal")
)

// ValidationError dikembalikan sebelum pekerjaan skoring dimulai.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "data tidak valid"
	}
	if len(e.Fields) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, ", "))
}

func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// JSON menulis envelope standar {"status","message","data"}.
func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// ErrorJSON memetakan error domain ke status HTTP.
func ErrorJSON(c echo.Context, err error, fallback string) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  http.StatusBadRequest,
			"message": verr.Error(),
			"data":    map[string]interface{}{"fields": verr.Fields},
		})
	case errors.Is(err, ErrFileTooLarge):
		return JSON(c, http.StatusRequestEntityTooLarge, err.Error(), map[string]interface{}{"fields": []string{"uploadBatuk"}})
	case errors.Is(err, ErrNotFound):
		return JSON(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrConflict):
		return JSON(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		return JSON(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		return JSON(c, http.StatusForbidden, ErrForbidden.Error(), nil)
	case errors.Is(err, ErrStorage):
		return JSON(c, http.StatusBadGateway, ErrStorage.Error(), nil)
	default:
		return JSON(c, http.StatusInternalServerError, fallback, nil)
	}
}
