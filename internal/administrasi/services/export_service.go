package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/internal/screening/scoring"
)

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"

	exportSheet = "Skrining"
	timeLayout  = "2006-01-02 15:04:05"
)

var baseHeaders = []string{
	"ID", "Tanggal", "Nama", "Username", "Usia", "No Telp", "Total Skor", "Pita LILA",
	"Rekomendasi", "Probabilitas AI", "Analisis AI", "Audio",
}

// FormatProbabilityPercent mengubah probabilitas desimal ("0.7312") menjadi persen bulat ("73%").
// Nilai yang bukan angka ditampilkan "-".
func FormatProbabilityPercent(p string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	// epsilon menahan galat float, mis. 0.29*100 = 28.999...
	return fmt.Sprintf("%d%%", int(math.Floor(v*100+1e-9)))
}

// ExportRows menyusun header dan baris export; jawaban kuesioner menjadi kolom tambahan.
func ExportRows(list []models.Skrining) ([]string, [][]string) {
	keys := scoring.Keys()
	headers := append(append([]string{}, baseHeaders...), keys...)

	rows := make([][]string, 0, len(list))
	for _, s := range list {
		username := "-"
		if s.Username != nil {
			username = *s.Username
		}
		audio := ""
		if s.Audio != nil {
			audio = s.Audio.Location
		}
		row := []string{
			strconv.FormatInt(s.IDSkrining, 10),
			s.TanggalSkrining.Format(timeLayout),
			s.Nama,
			username,
			strconv.Itoa(s.Usia),
			s.NoTelp,
			strconv.Itoa(s.TotalScore),
			string(s.PitaLila),
			s.Rekomendasi,
			FormatProbabilityPercent(s.AIProbability),
			s.AIAnalysis,
			audio,
		}
		for _, k := range keys {
			v := s.DataSkrining[k]
			if v == "" {
				v = "-"
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// WriteCSV menulis export dalam format CSV.
func WriteCSV(w io.Writer, list []models.Skrining) error {
	headers, rows := ExportRows(list)
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("gagal menulis CSV: %w", err)
	}
	return nil
}

// WriteXLSX menulis export sebagai workbook Excel dengan satu sheet.
func WriteXLSX(w io.Writer, list []models.Skrining) error {
	headers, rows := ExportRows(list)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("gagal membuat sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("gagal membuat stream writer: %w", err)
	}
	if err := sw.SetRow("A1", toCells(headers)); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return fmt.Errorf("gagal menulis baris %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("gagal flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("gagal menulis file excel: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
