// Package scoring menghitung skor berbasis aturan dan mengklasifikasikan risiko TB.
package scoring

import "github.com/c14220110/skrining-tb-backend/internal/screening/models"

// Jawab adalah nilai jawaban yang memberi poin.
const Jawab = "Ya"

// RuleGroup adalah sekelompok pertanyaan dengan bobot poin yang sama.
type RuleGroup struct {
	Name   string
	Weight int
	Keys   []string
}

// DefaultRules adalah tabel kanonik pertanyaan skrining.
// Kelompok sikap/lingkungan memakai daftar 9 pertanyaan.
var DefaultRules = []RuleGroup{
	{
		Name:   "riwayat",
		Weight: 5,
		Keys:   []string{"riwayatTB"},
	},
	{
		Name:   "gejala",
		Weight: 3,
		Keys: []string{
			"batuk2minggu",
			"keringatMalam",
			"nafsuMakanKurang",
			"sesak",
			"dahakDarah",
			"malaise",
			"penurunanBB",
			"demamMenggigil",
		},
	},
	{
		Name:   "paparan",
		Weight: 2,
		Keys: []string{
			"paparanRumahTB",
			"paparanRuanganTertutup",
			"paparanRawatTanpaAPD",
			"paparanKeluargaTetangga",
			"paparanLingkunganPadat",
		},
	},
	{
		Name:   "sikap_lingkungan",
		Weight: 1,
		Keys: []string{
			"sikapJarangCuciTangan",
			"sikapTidakMaskerBatuk",
			"sikapRuanganPadat",
			"sikapMenundaPeriksa",
			"lingkunganVentilasiKurang",
			"lingkunganRumahPadat",
			"lingkunganKurangMatahari",
			"lingkunganTerpaparAsap",
			"lingkunganSanitasiRendah",
		},
	},
}

// ComputeRuleScore menjumlahkan poin dari jawaban "Ya". Key yang tidak dikenal diabaikan.
func ComputeRuleScore(answers models.Jawaban) int {
	total := 0
	for _, points := range Breakdown(answers) {
		total += points
	}
	return total
}

// Breakdown mengembalikan poin per kelompok pertanyaan.
func Breakdown(answers models.Jawaban) map[string]int {
	out := make(map[string]int, len(DefaultRules))
	for _, g := range DefaultRules {
		points := 0
		for _, k := range g.Keys {
			if answers[k] == Jawab {
				points += g.Weight
			}
		}
		out[g.Name] = points
	}
	return out
}

// Keys mengembalikan seluruh key pertanyaan yang dinilai, berurutan sesuai tabel.
func Keys() []string {
	var keys []string
	for _, g := range DefaultRules {
		keys = append(keys, g.Keys...)
	}
	return keys
}
