package scoring

import (
	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/internal/screening/predictor"
)

// Ambang batas inklusif.
const (
	MinSkorMerah  = 33
	MinSkorKuning = 17
)

const (
	RekomendasiMerah  = "RISIKO TINGGI. Segera periksa ke dokter atau fasilitas kesehatan terdekat untuk pemeriksaan dahak dan rontgen."
	RekomendasiKuning = "RISIKO SEDANG. Lakukan observasi mandiri selama 1-2 minggu dan periksa bila gejala menetap."
	RekomendasiHijau  = "RISIKO RENDAH. Jaga kesehatan, terapkan etika batuk dan cuci tangan secara rutin."
)

type Result struct {
	TotalScore  int             `json:"totalScore"`
	PitaLila    models.PitaLila `json:"riskBand"`
	Rekomendasi string          `json:"recommendation"`
}

// Classify menggabungkan skor aturan dengan skor prediktor. Prediktor yang gagal menyumbang 0.
func Classify(ruleScore int, outcome predictor.Outcome) Result {
	total := ruleScore + outcome.Contribution()
	if total < 0 {
		total = 0
	}

	switch {
	case total >= MinSkorMerah:
		return Result{TotalScore: total, PitaLila: models.PitaMerah, Rekomendasi: RekomendasiMerah}
	case total >= MinSkorKuning:
		return Result{TotalScore: total, PitaLila: models.PitaKuning, Rekomendasi: RekomendasiKuning}
	default:
		return Result{TotalScore: total, PitaLila: models.PitaHijau, Rekomendasi: RekomendasiHijau}
	}
}
