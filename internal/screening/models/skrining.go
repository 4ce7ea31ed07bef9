package models

import (
	"io"
	"time"
)

// Jawaban adalah jawaban kuesioner: key pertanyaan -> nilai ("Ya"/"Tidak" atau teks bebas).
type Jawaban map[string]string

// AudioReference menunjuk blob audio yang tersimpan.
type AudioReference struct {
	// Location adalah URL atau path publik untuk diputar ulang/diekspor.
	Location string `json:"location"`
	// Handle adalah key object yang dipakai untuk menghapus blob.
	Handle string `json:"handle"`
}

// Band risiko hasil skrining.
type PitaLila string

const (
	PitaHijau  PitaLila = "Hijau"
	PitaKuning PitaLila = "Kuning"
	PitaMerah  PitaLila = "Merah"
)

// Skrining mewakili record di tabel Skrining. Tidak diubah setelah dibuat.
type Skrining struct {
	IDSkrining      int64           `json:"id_skrining"`
	IDUser          *int64          `json:"id_user"`
	Username        *string         `json:"username,omitempty"`
	Nama            string          `json:"nama"`
	Usia            int             `json:"usia"`
	NoTelp          string          `json:"no_telp"`
	DataSkrining    Jawaban         `json:"data_skrining"`
	TotalScore      int             `json:"total_score"`
	PitaLila        PitaLila        `json:"pita_lila"`
	Rekomendasi     string          `json:"rekomendasi"`
	Audio           *AudioReference `json:"audio,omitempty"`
	AIProbability   string          `json:"ai_probability"`
	AIAnalysis      string          `json:"ai_analysis"`
	TanggalSkrining time.Time       `json:"tanggal_skrining"`
}

// AudioUpload adalah file audio opsional yang dikirim bersama skrining.
type AudioUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Submission adalah input skrining yang sudah diambil dari form multipart.
type Submission struct {
	IDUser  *int64
	Nama    string
	Usia    string
	NoTelp  string
	Jawaban Jawaban
	Audio   *AudioUpload
}
