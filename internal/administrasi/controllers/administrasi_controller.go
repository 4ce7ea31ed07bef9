package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/internal/administrasi/models"
	"github.com/c14220110/skrining-tb-backend/internal/administrasi/services"
	screeningServices "github.com/c14220110/skrining-tb-backend/internal/screening/services"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

type AdministrasiController struct {
	Service  *services.AdministrasiService
	Skrining *screeningServices.SkriningService
	JWT      *utils.JWTManager
	Logger   *zap.Logger
}

func NewAdministrasiController(service *services.AdministrasiService, skrining *screeningServices.SkriningService, jwt *utils.JWTManager, logger *zap.Logger) *AdministrasiController {
	return &AdministrasiController{Service: service, Skrining: skrining, JWT: jwt, Logger: logger}
}

// Login menangani permintaan login admin.
func (ac *AdministrasiController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return utils.ErrorJSON(c, err, "Login gagal")
	}

	if err := ac.Service.Authenticate(req.Username, req.Password); err != nil {
		ac.Logger.Warn("login admin gagal", zap.String("username", req.Username), zap.String("ip", c.RealIP()))
		return utils.JSON(c, http.StatusUnauthorized, "Invalid username or password", nil)
	}

	token, exp, err := ac.JWT.GenerateToken(0, req.Username, utils.RoleAdmin)
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Failed to generate token: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Login successful", map[string]interface{}{
		"username":   req.Username,
		"role":       utils.RoleAdmin,
		"token":      token,
		"expired_at": exp,
	})
}

// ListSkrining mengembalikan seluruh hasil skrining, terbaru lebih dulu.
func (ac *AdministrasiController) ListSkrining(c echo.Context) error {
	list, err := ac.Skrining.List(c.Request().Context())
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal mengambil data skrining")
	}
	return utils.JSON(c, http.StatusOK, "Data skrining ditemukan", list)
}

// ExportSkrining mengunduh seluruh hasil skrining sebagai CSV atau XLSX (?format=csv|xlsx).
func (ac *AdministrasiController) ExportSkrining(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = services.ExportCSV
	}

	var contentType string
	switch format {
	case services.ExportCSV:
		contentType = "text/csv; charset=utf-8"
	case services.ExportXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return utils.ErrorJSON(c, utils.NewValidationError("format harus csv atau xlsx", "format"), "")
	}

	list, err := ac.Skrining.List(c.Request().Context())
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal mengambil data skrining")
	}

	var buf bytes.Buffer
	if format == services.ExportXLSX {
		err = services.WriteXLSX(&buf, list)
	} else {
		err = services.WriteCSV(&buf, list)
	}
	if err != nil {
		ac.Logger.Error("export skrining gagal", zap.String("format", format), zap.Error(err))
		return utils.JSON(c, http.StatusInternalServerError, "Gagal membuat file export", nil)
	}

	filename := fmt.Sprintf("skrining_tb_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// GetSkrining mengembalikan detail satu skrining.
func (ac *AdministrasiController) GetSkrining(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.JSON(c, http.StatusBadRequest, "id harus berupa angka", nil)
	}
	rec, err := ac.Skrining.Get(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal mengambil data skrining")
	}
	return utils.JSON(c, http.StatusOK, "Data skrining ditemukan", rec)
}

// DeleteSkrining menghapus satu skrining beserta audionya.
func (ac *AdministrasiController) DeleteSkrining(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.JSON(c, http.StatusBadRequest, "id harus berupa angka", nil)
	}
	if err := ac.Skrining.Delete(c.Request().Context(), id); err != nil {
		return utils.ErrorJSON(c, err, "Gagal menghapus skrining")
	}
	return utils.JSON(c, http.StatusOK, "Skrining berhasil dihapus", map[string]interface{}{"id": id})
}

// DeleteManySkrining menghapus beberapa skrining sekaligus: body {"ids": [1, 2]}.
func (ac *AdministrasiController) DeleteManySkrining(c echo.Context) error {
	var req models.DeleteManyRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return utils.ErrorJSON(c, err, "")
	}

	n, err := ac.Skrining.DeleteMany(c.Request().Context(), req.IDs)
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal menghapus skrining")
	}
	return utils.JSON(c, http.StatusOK, "Skrining berhasil dihapus", map[string]interface{}{"deleted": n})
}
