package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/skrining-tb-backend/internal/common/middlewares"
	"github.com/c14220110/skrining-tb-backend/internal/screening/ingest"
	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/internal/screening/services"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// Field identitas; field form lainnya dianggap jawaban kuesioner.
var identityFields = map[string]bool{
	"nama":          true,
	"usia":          true,
	"no_telp":       true,
	"currentUserId": true,
}

type SkriningController struct {
	Service *services.SkriningService
}

func NewSkriningController(service *services.SkriningService) *SkriningController {
	return &SkriningController{Service: service}
}

// SubmitSkrining menerima form multipart skrining beserta rekaman batuk opsional.
func (sc *SkriningController) SubmitSkrining(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		if isTooLarge(err) {
			return utils.ErrorJSON(c, utils.ErrFileTooLarge, "")
		}
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}

	sub := models.Submission{
		Nama:    form.Get("nama"),
		Usia:    form.Get("usia"),
		NoTelp:  form.Get("no_telp"),
		Jawaban: models.Jawaban{},
	}
	for key, values := range form {
		if identityFields[key] || len(values) == 0 {
			continue
		}
		sub.Jawaban[key] = values[0]
	}

	// Pemilik record hanya diambil dari token, bukan dari field currentUserId.
	if claims := middlewares.GetClaims(c); claims != nil && claims.Role == utils.RoleUser {
		uid := claims.UserID
		sub.IDUser = &uid
	}

	fh, err := c.FormFile(ingest.FieldAudio)
	switch {
	case err == nil:
		sub.Audio = &models.AudioUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}

	res, err := sc.Service.Submit(c.Request().Context(), sub)
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal menyimpan hasil skrining")
	}

	rec := res.Record
	data := map[string]interface{}{
		"id":             rec.IDSkrining,
		"totalScore":     rec.TotalScore,
		"ruleScore":      res.RuleScore,
		"riskBand":       rec.PitaLila,
		"recommendation": rec.Rekomendasi,
		"breakdown":      res.Breakdown,
		"aiScore":        res.Outcome.Contribution(),
		"aiProbability":  rec.AIProbability,
		"aiAnalysis":     rec.AIAnalysis,
		"aiStatus":       res.Outcome.Status(),
	}
	if rec.Audio != nil {
		data["audioUrl"] = rec.Audio.Location
	}
	return utils.JSON(c, http.StatusOK, "Skrining berhasil disimpan", data)
}

// GetHistory mengembalikan riwayat skrining user yang login.
func (sc *SkriningController) GetHistory(c echo.Context) error {
	claims := middlewares.GetClaims(c)
	list, err := sc.Service.History(c.Request().Context(), claims.UserID)
	if err != nil {
		return utils.ErrorJSON(c, err, "Gagal mengambil riwayat skrining")
	}
	return utils.JSON(c, http.StatusOK, "Riwayat skrining ditemukan", list)
}

// DeleteOwnSkrining menghapus skrining milik user yang login.
func (sc *SkriningController) DeleteOwnSkrining(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return utils.JSON(c, http.StatusBadRequest, "id harus berupa angka", nil)
	}
	claims := middlewares.GetClaims(c)
	if err := sc.Service.DeleteOwned(c.Request().Context(), id, claims.UserID); err != nil {
		return utils.ErrorJSON(c, err, "Gagal menghapus skrining")
	}
	return utils.JSON(c, http.StatusOK, "Skrining berhasil dihapus", map[string]interface{}{"id": id})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	var he *echo.HTTPError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) ||
		(errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) ||
		strings.Contains(err.Error(), "request body too large")
}
