package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/c14220110/skrining-tb-backend/internal/administrasi/models"
	screeningModels "github.com/c14220110/skrining-tb-backend/internal/screening/models"
)

const dateLayout = "2006-01-02"

// urutan tampil pita di dashboard, risiko tertinggi lebih dulu
var pitaOrder = []screeningModels.PitaLila{
	screeningModels.PitaMerah,
	screeningModels.PitaKuning,
	screeningModels.PitaHijau,
}

type DashboardService struct {
	DB *sql.DB
}

func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{DB: db}
}

// GetDashboardData menghitung ringkasan skrining pada rentang tanggal [start, end] (inklusif).
func (svc *DashboardService) GetDashboardData(ctx context.Context, start, end time.Time) (models.DashboardData, error) {
	d := models.DashboardData{
		RentangAwal:  start.Format(dateLayout),
		RentangAkhir: end.Format(dateLayout),
	}
	// extend end to end of day
	end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	// 1. Total, dengan audio, dan milik pengguna terdaftar
	totalQ := `
		SELECT COUNT(*),
			COALESCE(SUM(Audio_File_Path IS NOT NULL), 0),
			COALESCE(SUM(ID_User IS NOT NULL), 0)
		FROM Skrining WHERE Tanggal_Skrining BETWEEN ? AND ?`
	if err := svc.DB.QueryRowContext(ctx, totalQ, start, end).Scan(&d.TotalSkrining, &d.DenganAudio, &d.PenggunaTerdaftar); err != nil {
		return d, fmt.Errorf("gagal menghitung total skrining: %w", err)
	}

	// 2. Jumlah per pita
	counts := map[string]int{}
	err := svc.scan(ctx, "SELECT Pita_Lila, COUNT(*) FROM Skrining WHERE Tanggal_Skrining BETWEEN ? AND ? GROUP BY Pita_Lila",
		[]interface{}{start, end}, func(rows *sql.Rows) error {
			var pita string
			var n int
			if err := rows.Scan(&pita, &n); err != nil {
				return err
			}
			counts[pita] = n
			return nil
		})
	if err != nil {
		return d, fmt.Errorf("gagal menghitung per pita: %w", err)
	}
	for _, p := range pitaOrder {
		d.PerPita = append(d.PerPita, models.PitaCount{PitaLila: string(p), Count: counts[string(p)]})
	}

	// 3. Skrining harian
	d.SkriningHarian, err = svc.timeCounts(ctx, "%Y-%m-%d", start, end)
	if err != nil {
		return d, fmt.Errorf("gagal menghitung skrining harian: %w", err)
	}

	// 4. Skrining bulanan
	d.SkriningBulanan, err = svc.timeCounts(ctx, "%Y-%m", start, end)
	if err != nil {
		return d, fmt.Errorf("gagal menghitung skrining bulanan: %w", err)
	}
	return d, nil
}

func (svc *DashboardService) timeCounts(ctx context.Context, format string, start, end time.Time) ([]models.TimeCount, error) {
	q := "SELECT DATE_FORMAT(Tanggal_Skrining, ?) AS period, COUNT(*) FROM Skrining WHERE Tanggal_Skrining BETWEEN ? AND ? GROUP BY period ORDER BY period"
	out := []models.TimeCount{}
	err := svc.scan(ctx, q, []interface{}{format, start, end}, func(rows *sql.Rows) error {
		var tc models.TimeCount
		if err := rows.Scan(&tc.Period, &tc.Count); err != nil {
			return err
		}
		out = append(out, tc)
		return nil
	})
	return out, err
}

func (svc *DashboardService) scan(ctx context.Context, q string, args []interface{}, fn func(*sql.Rows) error) error {
	rows, err := svc.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
