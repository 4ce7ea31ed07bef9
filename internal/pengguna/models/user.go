package models

import "time"

// User mewakili record di tabel Users.
type User struct {
	ID_User                 int64     `json:"id_user"`
	Username                string    `json:"username"`
	Password                string    `json:"-"`
	Nama_Lengkap            string    `json:"nama_lengkap"`
	No_Telp                 string    `json:"no_telp"`
	Usia                    *int      `json:"usia"`
	Tinggi_Badan            *float64  `json:"tinggi_badan"`
	Berat_Badan             *float64  `json:"berat_badan"`
	Pendidikan              string    `json:"pendidikan"`
	Pekerjaan               string    `json:"pekerjaan"`
	Jumlah_Anggota_Keluarga *int      `json:"jumlah_anggota_keluarga"`
	Created_At              time.Time `json:"created_at"`
}

// RegisterRequest menerima nama lengkap sebagai nama_lengkap atau namaLengkap (klien lama).
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Nama_Lengkap string `json:"nama_lengkap" validate:"omitempty,max=100"`
	NamaLengkap  string `json:"namaLengkap" validate:"omitempty,max=100"`
	No_Telp      string `json:"no_telp" validate:"omitempty,max=20"`
	NoTelp       string `json:"noTelp" validate:"omitempty,max=20"`
}

// FullName mendahulukan nama_lengkap bila kedua key dikirim.
func (r RegisterRequest) FullName() string {
	if r.Nama_Lengkap != "" {
		return r.Nama_Lengkap
	}
	return r.NamaLengkap
}

func (r RegisterRequest) Phone() string {
	if r.No_Telp != "" {
		return r.No_Telp
	}
	return r.NoTelp
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileRequest berisi field profil yang boleh diubah user.
type ProfileRequest struct {
	Nama_Lengkap            string   `json:"nama_lengkap" validate:"omitempty,max=100"`
	No_Telp                 string   `json:"no_telp" validate:"omitempty,max=20"`
	Usia                    *int     `json:"usia" validate:"omitempty,min=0,max=150"`
	Tinggi_Badan            *float64 `json:"tinggi_badan" validate:"omitempty,gt=0,lt=300"`
	Berat_Badan             *float64 `json:"berat_badan" validate:"omitempty,gt=0,lt=500"`
	Pendidikan              string   `json:"pendidikan" validate:"omitempty,max=50"`
	Pekerjaan               string   `json:"pekerjaan" validate:"omitempty,max=50"`
	Jumlah_Anggota_Keluarga *int     `json:"jumlah_anggota_keluarga" validate:"omitempty,min=0,max=100"`
}
