package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/internal/screening/predictor"
	"github.com/c14220110/skrining-tb-backend/internal/screening/scoring"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// Event yang dikirim ke dashboard admin.
const (
	EventSkriningBaru    = "skrining_baru"
	EventSkriningDihapus = "skrining_dihapus"
)

// Usia default yang dikirim ke prediktor bila usia tidak diisi.
const defaultPredictAge = 30

const maxUsia = 150

// NamaTamu dipakai bila form tidak menyertakan nama.
const NamaTamu = "Guest"

// ErrPersistence dikembalikan bila hasil skrining gagal disimpan.
var ErrPersistence = errors.New("gagal menyimpan hasil skrining")

type Repository interface {
	Save(ctx context.Context, rec *models.Skrining) (int64, error)
	FindByOwner(ctx context.Context, userID int64) ([]models.Skrining, error)
	FindAll(ctx context.Context) ([]models.Skrining, error)
	FindByID(ctx context.Context, id int64) (*models.Skrining, error)
	DeleteByID(ctx context.Context, id int64) (*models.AudioReference, error)
	DeleteOwned(ctx context.Context, id, userID int64) (*models.AudioReference, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, []models.AudioReference, error)
}

type AudioIngestor interface {
	Ingest(ctx context.Context, r io.Reader, size int64, declaredName, contentType, subjectName string) (*models.AudioReference, error)
}

// Notifier menyiarkan event ke klien websocket. Tidak boleh memblokir.
type Notifier interface {
	Publish(event string, data interface{})
}

type identity struct {
	Nama   string `json:"nama" validate:"max=100"`
	Usia   string `json:"usia" validate:"omitempty,numeric"`
	NoTelp string `json:"no_telp" validate:"omitempty,max=20"`
}

// SubmitResult adalah hasil lengkap satu skrining.
type SubmitResult struct {
	Record    *models.Skrining
	RuleScore int
	Breakdown map[string]int
	Outcome   predictor.Outcome
}

type SkriningService struct {
	repo      Repository
	ingestor  AudioIngestor
	store     blob.Store
	predictor predictor.Predictor
	notifier  Notifier
	validator *utils.Validator
	logger    *zap.Logger
	now       func() time.Time
}

func NewSkriningService(repo Repository, ingestor AudioIngestor, store blob.Store, p predictor.Predictor, notifier Notifier, logger *zap.Logger) *SkriningService {
	return &SkriningService{
		repo:      repo,
		ingestor:  ingestor,
		store:     store,
		predictor: p,
		notifier:  notifier,
		validator: utils.NewValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Submit menjalankan alur skrining: validasi, skor aturan, simpan audio, prediksi, klasifikasi, simpan hasil.
// Kegagalan prediktor tidak pernah menggagalkan skrining.
func (s *SkriningService) Submit(ctx context.Context, sub models.Submission) (*SubmitResult, error) {
	id := identity{Nama: strings.TrimSpace(sub.Nama), Usia: strings.TrimSpace(sub.Usia), NoTelp: strings.TrimSpace(sub.NoTelp)}
	if err := s.validator.Validate(id); err != nil {
		return nil, err
	}
	if id.Nama == "" {
		id.Nama = NamaTamu
	}
	usia, age, err := parseUsia(id.Usia)
	if err != nil {
		return nil, err
	}

	ruleScore := scoring.ComputeRuleScore(sub.Jawaban)
	breakdown := scoring.Breakdown(sub.Jawaban)

	var ref *models.AudioReference
	if sub.Audio != nil {
		ref, err = s.ingest(ctx, sub.Audio, id.Nama)
		if err != nil {
			return nil, err
		}
	}

	outcome := s.predictor.Predict(ctx, ref, age)
	if !outcome.OK() {
		s.logger.Warn("prediksi AI gagal, skor AI dianggap 0",
			zap.String("status", outcome.Status()),
			zap.String("message", outcome.Message))
	}
	result := scoring.Classify(ruleScore, outcome)

	rec := &models.Skrining{
		IDUser:          sub.IDUser,
		Nama:            id.Nama,
		Usia:            usia,
		NoTelp:          id.NoTelp,
		DataSkrining:    sub.Jawaban,
		TotalScore:      result.TotalScore,
		PitaLila:        result.PitaLila,
		Rekomendasi:     result.Rekomendasi,
		Audio:           ref,
		AIProbability:   outcome.Probability,
		AIAnalysis:      outcome.Label,
		TanggalSkrining: s.now(),
	}
	if rec.DataSkrining == nil {
		rec.DataSkrining = models.Jawaban{}
	}

	if _, err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Error("gagal menyimpan skrining", zap.Error(err))
		s.removeBlob(ref)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info("skrining tersimpan",
		zap.Int64("id_skrining", rec.IDSkrining),
		zap.Int("rule_score", ruleScore),
		zap.Int("total_score", rec.TotalScore),
		zap.String("pita_lila", string(rec.PitaLila)),
		zap.String("ai_status", outcome.Status()))
	s.publish(EventSkriningBaru, rec)

	return &SubmitResult{Record: rec, RuleScore: ruleScore, Breakdown: breakdown, Outcome: outcome}, nil
}

func (s *SkriningService) ingest(ctx context.Context, up *models.AudioUpload, nama string) (*models.AudioReference, error) {
	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("gagal membuka file audio: %w", err)
	}
	defer rc.Close()
	return s.ingestor.Ingest(ctx, rc, up.Size, up.Filename, up.ContentType, nama)
}

// History mengembalikan skrining milik user, terbaru lebih dulu.
func (s *SkriningService) History(ctx context.Context, userID int64) ([]models.Skrining, error) {
	return s.repo.FindByOwner(ctx, userID)
}

// List mengembalikan seluruh skrining untuk dashboard admin.
func (s *SkriningService) List(ctx context.Context) ([]models.Skrining, error) {
	return s.repo.FindAll(ctx)
}

// Get mengembalikan satu skrining (admin). ErrNotFound bila id tidak ada.
func (s *SkriningService) Get(ctx context.Context, id int64) (*models.Skrining, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteOwned menghapus skrining milik user beserta audionya.
func (s *SkriningService) DeleteOwned(ctx context.Context, id, userID int64) error {
	ref, err := s.repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	s.removeBlob(ref)
	s.publish(EventSkriningDihapus, map[string]interface{}{"ids": []int64{id}})
	return nil
}

// Delete menghapus satu skrining (admin).
func (s *SkriningService) Delete(ctx context.Context, id int64) error {
	ref, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	s.removeBlob(ref)
	s.publish(EventSkriningDihapus, map[string]interface{}{"ids": []int64{id}})
	return nil
}

// DeleteMany menghapus beberapa skrining (admin) dan mengembalikan jumlah yang terhapus.
func (s *SkriningService) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, utils.NewValidationError("daftar ID kosong", "ids")
	}
	n, refs, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	for i := range refs {
		s.removeBlob(&refs[i])
	}
	if n > 0 {
		s.publish(EventSkriningDihapus, map[string]interface{}{"ids": ids})
	}
	return n, nil
}

// removeBlob menghapus audio secara best effort; kegagalan hanya dicatat.
func (s *SkriningService) removeBlob(ref *models.AudioReference) {
	if ref == nil || ref.Handle == "" || s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Remove(ctx, ref.Handle); err != nil {
		s.logger.Warn("gagal menghapus file audio", zap.String("handle", ref.Handle), zap.Error(err))
	}
}

func (s *SkriningService) publish(event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(event, data)
	}
}

// parseUsia mengembalikan usia yang disimpan dan usia yang dikirim ke prediktor.
func parseUsia(raw string) (int, float64, error) {
	if raw == "" {
		return 0, defaultPredictAge, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > maxUsia {
		return 0, 0, utils.NewValidationError("usia harus berupa angka 0-150", "usia")
	}
	return int(v), v, nil
}
