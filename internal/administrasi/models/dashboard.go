package models

// DashboardData adalah ringkasan skrining untuk dashboard admin.
type DashboardData struct {
	RentangAwal       string      `json:"rentang_awal"`
	RentangAkhir      string      `json:"rentang_akhir"`
	TotalSkrining     int         `json:"total_skrining"`
	DenganAudio       int         `json:"dengan_audio"`
	PenggunaTerdaftar int         `json:"pengguna_terdaftar"`
	PerPita           []PitaCount `json:"per_pita"`
	SkriningHarian    []TimeCount `json:"skrining_harian"`
	SkriningBulanan   []TimeCount `json:"skrining_bulanan"`
}

type PitaCount struct {
	PitaLila string `json:"pita_lila"`
	Count    int    `json:"count"`
}

type TimeCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}
