package routes

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/config"
	adminControllers "github.com/c14220110/skrining-tb-backend/internal/administrasi/controllers"
	adminServices "github.com/c14220110/skrining-tb-backend/internal/administrasi/services"
	"github.com/c14220110/skrining-tb-backend/internal/common/middlewares"
	userControllers "github.com/c14220110/skrining-tb-backend/internal/pengguna/controllers"
	userServices "github.com/c14220110/skrining-tb-backend/internal/pengguna/services"
	screeningControllers "github.com/c14220110/skrining-tb-backend/internal/screening/controllers"
	"github.com/c14220110/skrining-tb-backend/internal/screening/ingest"
	"github.com/c14220110/skrining-tb-backend/internal/screening/predictor"
	screeningServices "github.com/c14220110/skrining-tb-backend/internal/screening/services"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
	"github.com/c14220110/skrining-tb-backend/ws"
)

// Dependencies adalah infrastruktur yang dibangun di main.
type Dependencies struct {
	Config    *config.Config
	DB        *sql.DB
	Logger    *zap.Logger
	JWT       *utils.JWTManager
	Store     blob.Store
	Predictor predictor.Predictor
	Hub       *ws.Hub
}

// NewServer membuat instance echo lengkap dengan middleware global dan seluruh routes.
func NewServer(deps Dependencies) *echo.Echo {
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = middlewares.HTTPErrorHandler(deps.Logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middlewares.RequestLogger(deps.Logger))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			deps.Logger.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	// ruang tambahan 1 MiB untuk field form selain audio
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (cfg.MaxAudioBytes+1<<20)/1024)))

	Init(e, deps)
	return e
}

// Init menginisialisasi semua routes menggunakan Echo framework
func Init(e *echo.Echo, deps Dependencies) {
	cfg := deps.Config

	// Inisialisasi service
	skriningRepo := screeningServices.NewSkriningRepository(deps.DB)
	ingestor := ingest.NewIngestor(deps.Store, cfg.MaxAudioBytes)
	var notifier screeningServices.Notifier
	if deps.Hub != nil {
		notifier = deps.Hub
	}
	skriningService := screeningServices.NewSkriningService(skriningRepo, ingestor, deps.Store, deps.Predictor, notifier, deps.Logger)
	userService := userServices.NewUserService(deps.DB)
	adminService := adminServices.NewAdministrasiService(cfg.AdminUsername, cfg.AdminPasswordHash)
	dashboardService := adminServices.NewDashboardService(deps.DB)

	// Inisialisasi controller dengan service yang sesuai
	skriningController := screeningControllers.NewSkriningController(skriningService)
	userController := userControllers.NewUserController(userService, deps.JWT)
	adminController := adminControllers.NewAdministrasiController(adminService, skriningService, deps.JWT, deps.Logger)
	dashboardController := adminControllers.NewDashboardController(dashboardService)

	jwtRequired := middlewares.JWTMiddleware(deps.JWT)
	userOnly := middlewares.RequireRole(utils.RoleUser)
	adminOnly := middlewares.RequireRole(utils.RoleAdmin)

	e.GET("/health", healthHandler(deps.DB))

	// Grup API utama
	api := e.Group("/api")

	// **Akun pengguna**
	api.POST("/register", userController.Register, middlewares.RegisterRateLimiter()) // Tidak pakai JWT
	api.POST("/login", userController.Login, middlewares.LoginRateLimiter())          // Tidak pakai JWT
	api.GET("/profile", userController.GetProfile, jwtRequired, userOnly)
	api.PUT("/profile", userController.UpdateProfile, jwtRequired, userOnly)

	// **Skrining**
	api.POST("/skrining", skriningController.SubmitSkrining, middlewares.OptionalJWTMiddleware(deps.JWT))
	api.GET("/history", skriningController.GetHistory, jwtRequired, userOnly)
	api.DELETE("/skrining/:id", skriningController.DeleteOwnSkrining, jwtRequired, userOnly)

	// **Grup Admin**
	api.POST("/admin/login", adminController.Login, middlewares.LoginRateLimiter()) // Tidak pakai JWT
	admin := api.Group("/admin", jwtRequired, adminOnly)
	admin.GET("/dashboard", dashboardController.GetDashboard)
	admin.GET("/skrining", adminController.ListSkrining)
	admin.GET("/skrining/export", adminController.ExportSkrining)
	admin.GET("/skrining/:id", adminController.GetSkrining)
	admin.DELETE("/skrining/:id", adminController.DeleteSkrining)
	admin.DELETE("/skrining", adminController.DeleteManySkrining)

	// Live feed dashboard admin
	if deps.Hub != nil {
		e.GET("/ws/admin", ws.ServeWS(deps.Hub, deps.JWT))
	}

	// File statis
	if _, ok := deps.Store.(*blob.LocalStore); ok {
		e.Static("/uploads", cfg.UploadDir)
	}
	if cfg.PublicDir != "" {
		e.Static("/", cfg.PublicDir)
	}
}

func healthHandler(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return utils.JSON(c, http.StatusServiceUnavailable, "database tidak dapat dijangkau", nil)
		}
		return utils.JSON(c, http.StatusOK, "OK", nil)
	}
}
