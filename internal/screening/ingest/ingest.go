// Package ingest menerima file audio batuk, memvalidasinya, lalu menyimpannya ke blob store.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// Folder tempat seluruh rekaman disimpan di dalam store.
const Folder = "tb-care-uploads"

// FieldAudio adalah nama field multipart untuk rekaman batuk.
const FieldAudio = "uploadBatuk"

const maxSafeName = 64

var allowedExt = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"m4a":  true,
	"webm": true,
	"ogg":  true,
	"mp4":  true,
}

var contentTypeExt = map[string]string{
	"audio/wav":       "wav",
	"audio/wave":      "wav",
	"audio/x-wav":     "wav",
	"audio/mpeg":      "mp3",
	"audio/mp3":       "mp3",
	"audio/mp4":       "mp4",
	"video/mp4":       "mp4",
	"audio/x-m4a":     "m4a",
	"audio/m4a":       "m4a",
	"audio/webm":      "webm",
	"video/webm":      "webm",
	"audio/ogg":       "ogg",
	"application/ogg": "ogg",
}

type Ingestor struct {
	store    blob.Store
	maxBytes int64
	now      func() time.Time
}

func NewIngestor(store blob.Store, maxBytes int64) *Ingestor {
	return &Ingestor{store: store, maxBytes: maxBytes, now: time.Now}
}

// Ingest menyimpan audio dengan nama <subjek>_<unixnano>.<ext> dan mengembalikan referensinya.
// File yang melebihi batas ditolak utuh, tidak dipotong.
func (in *Ingestor) Ingest(ctx context.Context, r io.Reader, size int64, declaredName, contentType, subjectName string) (*models.AudioReference, error) {
	ext, err := Extension(declaredName, contentType)
	if err != nil {
		return nil, err
	}
	if in.maxBytes > 0 && size > in.maxBytes {
		return nil, utils.ErrFileTooLarge
	}

	var buf bytes.Buffer
	src := r
	if in.maxBytes > 0 {
		src = io.LimitReader(r, in.maxBytes+1)
	}
	n, err := io.Copy(&buf, src)
	if err != nil {
		return nil, fmt.Errorf("gagal membaca file audio: %w", err)
	}
	if in.maxBytes > 0 && n > in.maxBytes {
		return nil, utils.ErrFileTooLarge
	}
	if n == 0 {
		return nil, utils.NewValidationError("file audio kosong", FieldAudio)
	}

	key := fmt.Sprintf("%s/%s_%d.%s", Folder, SafeName(subjectName), in.now().UnixNano(), ext)
	location, err := in.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), n, mediaType(contentType, ext))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrStorage, err)
	}
	return &models.AudioReference{Location: location, Handle: key}, nil
}

// Extension menentukan ekstensi dari nama file, atau dari content type bila nama tidak berekstensi.
func Extension(declaredName, contentType string) (string, error) {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(declaredName), ".")); ext != "" {
		if allowedExt[ext] {
			return ext, nil
		}
		return "", utils.NewValidationError("format audio tidak didukung", FieldAudio)
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := contentTypeExt[strings.ToLower(mt)]; ok {
			return ext, nil
		}
	}
	return "", utils.NewValidationError("format audio tidak didukung", FieldAudio)
}

// SafeName mengganti karakter non-alfanumerik dengan "_" dan mengubahnya ke huruf kecil.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		if b.Len() >= maxSafeName {
			break
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func mediaType(contentType, ext string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	switch ext {
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/x-m4a"
	default:
		return "audio/" + ext
	}
}
