// Package predictor menjalankan klasifikasi batuk berbasis audio di luar proses.
//
// Setiap jalur eksekusi berakhir pada nilai Outcome; kegagalan tidak pernah dinaikkan
// sebagai error ke pemanggil dan selalu menyumbang skor 0.
package predictor

import (
	"context"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
)

type FailureReason string

const (
	FailureTimeout           FailureReason = "timeout"
	FailureProcessError      FailureReason = "process_error"
	FailureInvalidOutput     FailureReason = "invalid_output"
	FailureMissingExecutable FailureReason = "missing_executable"
	FailureNoAudio           FailureReason = "no_audio"
)

const (
	LabelNone  = "-"
	LabelGagal = "Gagal"
	LabelError = "Error"
)

// Predictor mengklasifikasikan rekaman batuk. ref nil berarti tidak ada audio.
type Predictor interface {
	Predict(ctx context.Context, ref *models.AudioReference, age float64) Outcome
}

// Outcome adalah hasil prediksi. Failure kosong berarti sukses.
type Outcome struct {
	Score       int           `json:"score"`
	Probability string        `json:"probability"`
	Label       string        `json:"label"`
	Failure     FailureReason `json:"failure,omitempty"`
	Message     string        `json:"message,omitempty"`
}

func (o Outcome) OK() bool { return o.Failure == "" }

// Contribution adalah poin yang ditambahkan ke skor total.
func (o Outcome) Contribution() int {
	if !o.OK() || o.Score < 0 {
		return 0
	}
	return o.Score
}

func (o Outcome) Status() string {
	if o.OK() {
		return "success"
	}
	return string(o.Failure)
}

// Skipped adalah hasil untuk skrining tanpa audio.
func Skipped() Outcome {
	return Outcome{Score: 0, Probability: "0", Label: LabelNone}
}

// Failed membangun hasil gagal dengan label tetap.
func Failed(reason FailureReason, message string) Outcome {
	label := LabelGagal
	if reason == FailureNoAudio {
		label = LabelError
	}
	return Outcome{Score: 0, Probability: "0", Label: label, Failure: reason, Message: message}
}
