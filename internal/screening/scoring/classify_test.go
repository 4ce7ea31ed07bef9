package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/internal/screening/predictor"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.PitaLila
	}{
		{0, models.PitaHijau},
		{16, models.PitaHijau},
		{17, models.PitaKuning},
		{32, models.PitaKuning},
		{33, models.PitaMerah},
		{63, models.PitaMerah},
	}
	for _, tt := range tests {
		got := Classify(tt.score, predictor.Skipped())
		assert.Equal(t, tt.want, got.PitaLila, "score %d", tt.score)
		assert.Equal(t, tt.score, got.TotalScore)
	}
}

func TestClassify_Recommendation(t *testing.T) {
	assert.Equal(t, RekomendasiHijau, Classify(0, predictor.Skipped()).Rekomendasi)
	assert.Equal(t, RekomendasiKuning, Classify(20, predictor.Skipped()).Rekomendasi)
	assert.Equal(t, RekomendasiMerah, Classify(40, predictor.Skipped()).Rekomendasi)
}

func TestClassify_AddsPredictorScore(t *testing.T) {
	got := Classify(24, predictor.Outcome{Score: 15, Probability: "0.8100", Label: "Positif (High Risk)"})
	assert.Equal(t, 39, got.TotalScore)
	assert.Equal(t, models.PitaMerah, got.PitaLila)
}

func TestClassify_FailedPredictorContributesNothing(t *testing.T) {
	got := Classify(32, predictor.Failed(predictor.FailureTimeout, "AI Timeout"))
	assert.Equal(t, 32, got.TotalScore)
	assert.Equal(t, models.PitaKuning, got.PitaLila)
}

func TestClassify_HistoryAndCoughWithoutAudio(t *testing.T) {
	rule := ComputeRuleScore(models.Jawaban{"riwayatTB": "Ya", "batuk2minggu": "Ya"})
	got := Classify(rule, predictor.Skipped())

	assert.Equal(t, 8, got.TotalScore)
	assert.Equal(t, models.PitaHijau, got.PitaLila)
	assert.Equal(t, RekomendasiHijau, got.Rekomendasi)
}
