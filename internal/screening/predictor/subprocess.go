package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
)

const defaultMaxOutputBytes = 1 << 20

type SubprocessConfig struct {
	Bin            string
	FallbackBin    string
	Script         string
	Timeout        time.Duration
	MaxConcurrent  int64
	TempDir        string
	MaxOutputBytes int64
}

// SubprocessPredictor menjalankan `<bin> <script> <audio> <usia>` dan membaca JSON dari stdout.
type SubprocessPredictor struct {
	cfg    SubprocessConfig
	store  blob.Store
	sem    *semaphore.Weighted
	logger *zap.Logger
}

func NewSubprocessPredictor(cfg SubprocessConfig, store blob.Store, logger *zap.Logger) *SubprocessPredictor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaultMaxOutputBytes
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &SubprocessPredictor{
		cfg:    cfg,
		store:  store,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
		logger: logger,
	}
}

func (p *SubprocessPredictor) Predict(ctx context.Context, ref *models.AudioReference, age float64) (out Outcome) {
	if ref == nil {
		return Skipped()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("predictor panic", zap.Any("panic", r))
			out = Failed(FailureProcessError, fmt.Sprint(r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	if _, err := os.Stat(p.cfg.Script); err != nil {
		p.logger.Error("script prediksi tidak ditemukan", zap.String("script", p.cfg.Script), zap.Error(err))
		return Failed(FailureMissingExecutable, "script prediksi tidak ditemukan")
	}

	path, cleanup, err := stage(ctx, p.store, ref, p.cfg.TempDir)
	defer cleanup()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failed(FailureTimeout, "AI Timeout (Download/Proses terlalu lama)")
		}
		p.logger.Warn("audio tidak dapat disiapkan", zap.String("handle", ref.Handle), zap.Error(err))
		return Failed(FailureNoAudio, err.Error())
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Failed(FailureTimeout, "AI Timeout (antrian prediksi penuh)")
	}
	defer p.sem.Release(1)

	return p.run(ctx, path, age)
}

func (p *SubprocessPredictor) run(ctx context.Context, audioPath string, age float64) Outcome {
	bins := []string{p.cfg.Bin}
	if p.cfg.FallbackBin != "" && p.cfg.FallbackBin != p.cfg.Bin {
		bins = append(bins, p.cfg.FallbackBin)
	}
	args := []string{p.cfg.Script, audioPath, strconv.FormatFloat(age, 'f', -1, 64)}

	var failed *Outcome
	for i, bin := range bins {
		start := time.Now()
		stdout, stderr, err := p.exec(ctx, bin, args)
		if err != nil && isLaunchError(err) && ctx.Err() == nil {
			p.logger.Warn("gagal menjalankan interpreter, mencoba alternatif", zap.String("bin", bin), zap.Error(err))
			continue
		}

		outcome := interpret(ctx, stdout, stderr, err)
		// interpreter jalan tetapi keluar tanpa output (mis. modul tidak terpasang): coba alternatif
		if err != nil && len(bytes.TrimSpace(stdout)) == 0 && ctx.Err() == nil && i < len(bins)-1 {
			p.logger.Warn("interpreter gagal tanpa output, mencoba alternatif",
				zap.String("bin", bin), zap.Error(err), zap.String("stderr", tail(stderr, 512)))
			failed = &outcome
			continue
		}
		fields := []zap.Field{
			zap.String("bin", bin),
			zap.Duration("duration", time.Since(start)),
			zap.String("status", outcome.Status()),
		}
		if outcome.OK() {
			p.logger.Info("prediksi selesai", append(fields, zap.Int("ml_score", outcome.Score))...)
		} else {
			p.logger.Warn("prediksi gagal", append(fields, zap.String("message", outcome.Message), zap.String("stderr", tail(stderr, 512)))...)
		}
		return outcome
	}
	if failed != nil {
		return *failed
	}
	return Failed(FailureMissingExecutable, "Python tidak terinstall di server.")
}

func (p *SubprocessPredictor) exec(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, max: p.cfg.MaxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, max: p.cfg.MaxOutputBytes}
	// Tanpa WaitDelay, cucu proses yang memegang pipe dapat menahan Wait setelah kill.
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// interpret memetakan hasil proses ke Outcome.
func interpret(ctx context.Context, stdout, stderr []byte, runErr error) Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Failed(FailureTimeout, "AI Timeout (Download/Proses terlalu lama)")
	}
	if ctx.Err() != nil {
		return Failed(FailureProcessError, "prediksi dibatalkan")
	}

	if runErr != nil && len(bytes.TrimSpace(stdout)) == 0 {
		msg := "Gagal menjalankan Python"
		if s := tail(stderr, 256); s != "" {
			msg += ": " + s
		}
		return Failed(FailureProcessError, msg)
	}

	obj, ok := extractJSON(stdout)
	if !ok {
		return Failed(FailureInvalidOutput, "Output AI bukan JSON valid")
	}
	return parseResult(obj)
}

// isLaunchError bernilai true bila executable tidak ada atau tidak dapat dijalankan.
func isLaunchError(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, exec.ErrDot)
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// limitedWriter membuang byte setelah batas max tanpa mengembalikan error ke proses.
type limitedWriter struct {
	w       io.Writer
	max     int64
	written int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	remaining := lw.max - lw.written
	if remaining <= 0 {
		return n, nil
	}
	if int64(n) > remaining {
		p = p[:remaining]
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	if err != nil {
		return written, err
	}
	return n, nil
}
