package predictor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
)

// stage menyiapkan file lokal yang bisa dibaca skrip. Blob remote diunduh ke file
// sementara yang unik; cleanup wajib dipanggil di setiap jalur keluar.
func stage(ctx context.Context, store blob.Store, ref *models.AudioReference, tempDir string) (string, func(), error) {
	noop := func() {}

	if store == nil {
		if _, err := os.Stat(ref.Location); err != nil {
			return "", noop, fmt.Errorf("file audio tidak terbaca: %w", err)
		}
		return ref.Location, noop, nil
	}

	if lp, ok := store.(blob.LocalPather); ok {
		p, err := lp.LocalPath(ref.Handle)
		if err != nil {
			return "", noop, err
		}
		if _, err := os.Stat(p); err != nil {
			return "", noop, fmt.Errorf("file audio tidak terbaca: %w", err)
		}
		return p, noop, nil
	}

	rc, err := store.Open(ctx, ref.Handle)
	if err != nil {
		return "", noop, fmt.Errorf("gagal mengunduh audio: %w", err)
	}
	defer rc.Close()

	name := fmt.Sprintf("temp_%d_%s%s", time.Now().UnixNano(), uuid.NewString(), filepath.Ext(ref.Handle))
	p := filepath.Join(tempDir, name)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", noop, fmt.Errorf("gagal membuat file sementara: %w", err)
	}
	cleanup := func() { os.Remove(p) }

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		cleanup()
		return "", noop, fmt.Errorf("gagal mengunduh audio: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("gagal menutup file sementara: %w", err)
	}
	return p, cleanup, nil
}
