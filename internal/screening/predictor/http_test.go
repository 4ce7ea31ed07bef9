package predictor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPPredictor_Success(t *testing.T) {
	var gotAge, gotAudio string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotAge = r.FormValue("age")
		f, _, err := r.FormFile("audio")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotAudio = string(b)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","probability":"0.7312","ml_score":15,"ai_analysis":"Positif (High Risk)"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ref := writeAudio(t, dir)
	p := NewHTTPPredictor(srv.URL, 5*time.Second, dir, nil, zap.NewNop())

	got := p.Predict(context.Background(), ref, 27.5)

	require.True(t, got.OK(), got.Message)
	assert.Equal(t, 15, got.Score)
	assert.Equal(t, "0.7312", got.Probability)
	assert.Equal(t, "Positif (High Risk)", got.Label)
	assert.Equal(t, "27.5", gotAge)
	assert.Equal(t, "RIFF", gotAudio)
}

func TestHTTPPredictor_NoAudio(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, "", nil, zap.NewNop())
	got := p.Predict(context.Background(), nil, 30)

	assert.True(t, got.OK())
	assert.Equal(t, LabelNone, got.Label)
	assert.False(t, called)
}

func TestHTTPPredictor_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"model belum dimuat"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := NewHTTPPredictor(srv.URL, 5*time.Second, dir, nil, zap.NewNop())
	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureProcessError, got.Failure)
	assert.Equal(t, "model belum dimuat", got.Message)
	assert.Equal(t, LabelGagal, got.Label)
}

func TestHTTPPredictor_EmptyErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := NewHTTPPredictor(srv.URL, 5*time.Second, dir, nil, zap.NewNop())
	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureProcessError, got.Failure)
	assert.Contains(t, got.Message, "502")
}

func TestHTTPPredictor_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := NewHTTPPredictor(srv.URL, 5*time.Second, dir, nil, zap.NewNop())
	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureInvalidOutput, got.Failure)
}

func TestHTTPPredictor_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	dir := t.TempDir()
	p := NewHTTPPredictor(srv.URL, 200*time.Millisecond, dir, nil, zap.NewNop())
	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureTimeout, got.Failure)
	assert.Equal(t, 0, got.Contribution())
}
