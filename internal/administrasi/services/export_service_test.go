package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
)

func sampleList() []models.Skrining {
	username := "budi"
	uid := int64(3)
	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	return []models.Skrining{
		{
			IDSkrining:      2,
			IDUser:          &uid,
			Username:        &username,
			Nama:            "Budi",
			Usia:            40,
			NoTelp:          "0812",
			DataSkrining:    models.Jawaban{"riwayatTB": "Ya", "sesak": "Tidak"},
			TotalScore:      39,
			PitaLila:        models.PitaMerah,
			Rekomendasi:     "RISIKO TINGGI.",
			Audio:           &models.AudioReference{Location: "/uploads/tb-care-uploads/budi_1.webm", Handle: "tb-care-uploads/budi_1.webm"},
			AIProbability:   "0.7312",
			AIAnalysis:      "Positif (High Risk)",
			TanggalSkrining: at,
		},
		{
			IDSkrining:      1,
			Nama:            "Tamu",
			DataSkrining:    models.Jawaban{},
			PitaLila:        models.PitaHijau,
			Rekomendasi:     "RISIKO RENDAH.",
			AIProbability:   "0",
			AIAnalysis:      "-",
			TanggalSkrining: at.Add(-time.Hour),
		},
	}
}

func TestFormatProbabilityPercent(t *testing.T) {
	tests := map[string]string{
		"0.7312": "73%",
		"0.29":   "29%",
		"1":      "100%",
		"0":      "0%",
		" 0.5 ":  "50%",
		"":       "-",
		"abc":    "-",
		"NaN":    "-",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatProbabilityPercent(in), in)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleList()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "ID", header[0])
	assert.Contains(t, header, "riwayatTB")

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("kolom %s tidak ada", name)
		return -1
	}

	assert.Equal(t, "2", records[1][col("ID")])
	assert.Equal(t, "budi", records[1][col("Username")])
	assert.Equal(t, "73%", records[1][col("Probabilitas AI")])
	assert.Equal(t, "Ya", records[1][col("riwayatTB")])
	assert.Equal(t, "Tidak", records[1][col("sesak")])
	assert.Equal(t, "-", records[1][col("malaise")])
	assert.Equal(t, "2025-06-01 08:30:00", records[1][col("Tanggal")])

	assert.Equal(t, "-", records[2][col("Username")])
	assert.Equal(t, "0%", records[2][col("Probabilitas AI")])
	assert.Equal(t, "", records[2][col("Audio")])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleList()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, baseHeaders, rows[0][:len(baseHeaders)])
	assert.Equal(t, "Budi", rows[1][2])
	assert.Equal(t, "73%", rows[1][9])
	assert.Equal(t, "Tamu", rows[2][2])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
