package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/skrining-tb-backend/internal/common/middlewares"
	"github.com/c14220110/skrining-tb-backend/internal/pengguna/models"
	"github.com/c14220110/skrining-tb-backend/internal/pengguna/services"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

type UserController struct {
	Service *services.UserService
	JWT     *utils.JWTManager
}

func NewUserController(service *services.UserService, jwt *utils.JWTManager) *UserController {
	return &UserController{Service: service, JWT: jwt}
}

func (uc *UserController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return utils.ErrorJSON(c, err, "Registrasi gagal")
	}

	id, err := uc.Service.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return utils.JSON(c, http.StatusConflict, "Username sudah digunakan.", nil)
		}
		return utils.ErrorJSON(c, err, "Registrasi gagal")
	}
	return utils.JSON(c, http.StatusCreated, "Registrasi berhasil.", map[string]interface{}{
		"id_user":  id,
		"username": req.Username,
	})
}

func (uc *UserController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return utils.ErrorJSON(c, err, "Login gagal")
	}

	user, err := uc.Service.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrUnauthorized) {
			return utils.JSON(c, http.StatusUnauthorized, "Username atau password salah.", nil)
		}
		return utils.ErrorJSON(c, err, "Login gagal")
	}

	token, exp, err := uc.JWT.GenerateToken(user.ID_User, user.Username, utils.RoleUser)
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Failed to generate token: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Login berhasil", map[string]interface{}{
		"id_user":    user.ID_User,
		"username":   user.Username,
		"nama":       user.Nama_Lengkap,
		"role":       utils.RoleUser,
		"token":      token,
		"expired_at": exp,
	})
}

func (uc *UserController) GetProfile(c echo.Context) error {
	claims := middlewares.GetClaims(c)
	user, err := uc.Service.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal mengambil profil")
	}
	return utils.JSON(c, http.StatusOK, "Profil ditemukan", user)
}

func (uc *UserController) UpdateProfile(c echo.Context) error {
	var req models.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return utils.ErrorJSON(c, err, "Gagal memperbarui profil")
	}

	claims := middlewares.GetClaims(c)
	if err := uc.Service.UpdateProfile(c.Request().Context(), claims.UserID, req); err != nil {
		return utils.ErrorJSON(c, err, "Gagal memperbarui profil")
	}
	return utils.JSON(c, http.StatusOK, "Profil berhasil diperbarui", nil)
}
