package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/skrining-tb-backend/internal/administrasi/services"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// rentang default dashboard bila tidak ada query
const defaultRangeDays = 30

type DashboardController struct {
	Service *services.DashboardService
	now     func() time.Time
}

func NewDashboardController(svc *services.DashboardService) *DashboardController {
	return &DashboardController{Service: svc, now: time.Now}
}

// GetDashboard handles GET /api/admin/dashboard?rentang_awal=dd/mm/yyyy&rentang_akhir=dd/mm/yyyy
func (dc *DashboardController) GetDashboard(c echo.Context) error {
	loc := jakarta()
	now := dc.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	start := today.AddDate(0, 0, -(defaultRangeDays - 1))
	end := today
	var err error
	if s := c.QueryParam("rentang_awal"); s != "" {
		if start, err = time.ParseInLocation("02/01/2006", s, loc); err != nil {
			return utils.ErrorJSON(c, utils.NewValidationError("format tanggal dd/mm/yyyy", "rentang_awal"), "")
		}
	}
	if s := c.QueryParam("rentang_akhir"); s != "" {
		if end, err = time.ParseInLocation("02/01/2006", s, loc); err != nil {
			return utils.ErrorJSON(c, utils.NewValidationError("format tanggal dd/mm/yyyy", "rentang_akhir"), "")
		}
	}
	if end.Before(start) {
		return utils.ErrorJSON(c, utils.NewValidationError("rentang_akhir sebelum rentang_awal", "rentang_akhir"), "")
	}

	dash, err := dc.Service.GetDashboardData(c.Request().Context(), start, end)
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal mengambil data dashboard")
	}
	return utils.JSON(c, http.StatusOK, "Data dashboard ditemukan", dash)
}

// jakarta mengembalikan zona Asia/Jakarta, atau zona lokal bila tzdata tidak tersedia.
func jakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.Local
	}
	return loc
}
