// Package blob menyimpan file audio hasil unggahan, baik di disk lokal maupun di object storage.
package blob

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object tidak ditemukan")

// Store adalah batas penyimpanan blob. Key bersifat relatif ("folder/nama.ext").
type Store interface {
	// Put menyimpan isi r dan mengembalikan lokasi yang dapat diakses (URL atau path publik).
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (location string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// LocalPather diimplementasikan store yang menyimpan object sebagai file lokal
// sehingga dapat dibaca langsung tanpa diunduh.
type LocalPather interface {
	LocalPath(key string) (string, error)
}
