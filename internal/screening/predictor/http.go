package predictor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
)

// HTTPPredictor mengirim audio ke layanan inferensi yang memakai protokol JSON yang sama
// dengan skrip prediksi (status, ml_score, probability, ai_analysis).
type HTTPPredictor struct {
	client  *resty.Client
	url     string
	timeout time.Duration
	tempDir string
	store   blob.Store
	logger  *zap.Logger
}

func NewHTTPPredictor(url string, timeout time.Duration, tempDir string, store blob.Store, logger *zap.Logger) *HTTPPredictor {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &HTTPPredictor{
		client:  client,
		url:     url,
		timeout: timeout,
		tempDir: tempDir,
		store:   store,
		logger:  logger,
	}
}

func (p *HTTPPredictor) Predict(ctx context.Context, ref *models.AudioReference, age float64) (out Outcome) {
	if ref == nil {
		return Skipped()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("predictor panic", zap.Any("panic", r))
			out = Failed(FailureProcessError, fmt.Sprint(r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	path, cleanup, err := stage(ctx, p.store, ref, p.tempDir)
	defer cleanup()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failed(FailureTimeout, "AI Timeout (Download/Proses terlalu lama)")
		}
		p.logger.Warn("audio tidak dapat disiapkan", zap.String("handle", ref.Handle), zap.Error(err))
		return Failed(FailureNoAudio, err.Error())
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetFile("audio", path).
		SetFormData(map[string]string{"age": strconv.FormatFloat(age, 'f', -1, 64)}).
		Post(p.url)
	if err != nil {
		var netErr net.Error
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return Failed(FailureTimeout, "AI Timeout (layanan prediksi tidak merespons)")
		}
		p.logger.Warn("layanan prediksi tidak dapat dihubungi", zap.String("url", p.url), zap.Error(err))
		return Failed(FailureMissingExecutable, "layanan prediksi tidak dapat dihubungi")
	}

	var runErr error
	if resp.IsError() {
		if len(resp.Body()) == 0 {
			return Failed(FailureProcessError, fmt.Sprintf("layanan prediksi mengembalikan status %d", resp.StatusCode()))
		}
		runErr = fmt.Errorf("status %d", resp.StatusCode())
	}
	outcome := interpret(ctx, resp.Body(), nil, runErr)
	if !outcome.OK() {
		p.logger.Warn("prediksi gagal", zap.Int("http_status", resp.StatusCode()), zap.String("status", outcome.Status()), zap.String("message", outcome.Message))
	}
	return outcome
}
