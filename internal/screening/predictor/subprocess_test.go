package predictor

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
)

const successScript = `echo "Loading model..."
echo "$1|$2" > "$(dirname "$0")/args.txt"
echo '{"status":"success","probability":"0.5123","ml_score":8,"ai_analysis":"Suspek (Medium)"}'
`

// writeScript menulis skrip sh palsu yang berperan sebagai predict_cough.py.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "predict.sh")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func writeAudio(t *testing.T, dir string) *models.AudioReference {
	t.Helper()
	p := filepath.Join(dir, "budi_1.webm")
	require.NoError(t, os.WriteFile(p, []byte("RIFF"), 0o644))
	return &models.AudioReference{Location: p, Handle: "budi_1.webm"}
}

func newTestPredictor(script string, timeout time.Duration) *SubprocessPredictor {
	return NewSubprocessPredictor(SubprocessConfig{
		Bin:           "sh",
		Script:        script,
		Timeout:       timeout,
		MaxConcurrent: 2,
	}, nil, zap.NewNop())
}

func TestSubprocessPredictor_NoAudioLaunchesNothing(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `touch "$(dirname "$0")/launched"`)
	p := newTestPredictor(script, time.Second)

	got := p.Predict(context.Background(), nil, 30)

	assert.True(t, got.OK())
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, "0", got.Probability)
	assert.Equal(t, LabelNone, got.Label)
	_, err := os.Stat(filepath.Join(dir, "launched"))
	assert.True(t, os.IsNotExist(err), "process must not be launched without audio")
}

func TestSubprocessPredictor_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	script := writeScript(t, dir, successScript)
	ref := writeAudio(t, dir)
	p := newTestPredictor(script, 5*time.Second)

	got := p.Predict(context.Background(), ref, 42)

	require.True(t, got.OK(), got.Message)
	assert.Equal(t, 8, got.Score)
	assert.Equal(t, "0.5123", got.Probability)
	assert.Equal(t, "Suspek (Medium)", got.Label)

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, ref.Location+"|42", strings.TrimSpace(string(args)))
}

func TestSubprocessPredictor_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	script := writeScript(t, dir, "exec sleep 5\n")
	p := newTestPredictor(script, 200*time.Millisecond)

	start := time.Now()
	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureTimeout, got.Failure)
	assert.Equal(t, LabelGagal, got.Label)
	assert.Equal(t, 0, got.Contribution())
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestSubprocessPredictor_InvalidOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "echo 'Traceback (most recent call last): boom'\n")
	p := newTestPredictor(script, 5*time.Second)

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureInvalidOutput, got.Failure)
	assert.Equal(t, LabelGagal, got.Label)
	assert.Equal(t, 0, got.Contribution())
}

func TestSubprocessPredictor_NonZeroExitWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "echo 'ModuleNotFoundError: librosa' >&2\nexit 3\n")
	p := newTestPredictor(script, 5*time.Second)

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureProcessError, got.Failure)
	assert.Contains(t, got.Message, "librosa")
}

func TestSubprocessPredictor_ErrorStatus(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, `echo '{"status": "error", "message": "Parameter kurang"}'`)
	p := newTestPredictor(script, 5*time.Second)

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)

	assert.Equal(t, FailureProcessError, got.Failure)
	assert.Equal(t, "Parameter kurang", got.Message)
}

func TestSubprocessPredictor_MissingExecutable(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, successScript)

	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:     "tb-python-yang-tidak-ada",
		Script:  script,
		Timeout: 5 * time.Second,
	}, nil, zap.NewNop())

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)
	assert.Equal(t, FailureMissingExecutable, got.Failure)
}

func TestSubprocessPredictor_FallbackExecutable(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, successScript)

	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:         "tb-python-yang-tidak-ada",
		FallbackBin: "sh",
		Script:      script,
		Timeout:     5 * time.Second,
	}, nil, zap.NewNop())

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)
	require.True(t, got.OK(), got.Message)
	assert.Equal(t, 8, got.Score)
}

func TestSubprocessPredictor_FallbackAfterSilentExit(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, successScript)

	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:         "false",
		FallbackBin: "sh",
		Script:      script,
		Timeout:     5 * time.Second,
	}, nil, zap.NewNop())

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)
	require.True(t, got.OK(), got.Message)
	assert.Equal(t, 8, got.Score)
	assert.Equal(t, "Suspek (Medium)", got.Label)
}

func TestSubprocessPredictor_SilentExitWithoutWorkingFallback(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "echo 'ModuleNotFoundError: librosa' >&2\nexit 3\n")

	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:         "sh",
		FallbackBin: "tb-python-yang-tidak-ada",
		Script:      script,
		Timeout:     5 * time.Second,
	}, nil, zap.NewNop())

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)
	assert.Equal(t, FailureProcessError, got.Failure)
	assert.Contains(t, got.Message, "librosa")
}

func TestSubprocessPredictor_MissingScript(t *testing.T) {
	dir := t.TempDir()
	p := newTestPredictor(filepath.Join(dir, "predict_cough.py"), time.Second)

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)
	assert.Equal(t, FailureMissingExecutable, got.Failure)
}

func TestSubprocessPredictor_UnreadableAudio(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, successScript)
	p := newTestPredictor(script, time.Second)

	got := p.Predict(context.Background(), &models.AudioReference{Location: filepath.Join(dir, "hilang.wav")}, 30)
	assert.Equal(t, FailureNoAudio, got.Failure)
	assert.Equal(t, LabelError, got.Label)
}

func TestSubprocessPredictor_BoundedConcurrency(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, successScript)
	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:           "sh",
		Script:        script,
		Timeout:       150 * time.Millisecond,
		MaxConcurrent: 1,
	}, nil, zap.NewNop())

	require.NoError(t, p.sem.Acquire(context.Background(), 1))
	defer p.sem.Release(1)

	got := p.Predict(context.Background(), writeAudio(t, dir), 30)
	assert.Equal(t, FailureTimeout, got.Failure)
}

// remoteStore meniru object storage: tidak memiliki path lokal.
type remoteStore struct {
	data   []byte
	opened int
}

func (s *remoteStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *remoteStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.opened++
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *remoteStore) Remove(ctx context.Context, key string) error { return nil }

func TestSubprocessPredictor_RemoteAudioIsStagedAndCleaned(t *testing.T) {
	dir := t.TempDir()
	tmp := t.TempDir()
	script := writeScript(t, dir, `cat "$1" > "$(dirname "$0")/seen.txt"
echo "$1" > "$(dirname "$0")/path.txt"
echo '{"status":"success","probability":"0.1000","ml_score":0,"ai_analysis":"Negatif"}'
`)
	store := &remoteStore{data: []byte("isi-audio")}
	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:     "sh",
		Script:  script,
		Timeout: 5 * time.Second,
		TempDir: tmp,
	}, store, zap.NewNop())

	ref := &models.AudioReference{Location: "https://cdn.test/tb-care-uploads/budi_1.mp4", Handle: "tb-care-uploads/budi_1.mp4"}
	got := p.Predict(context.Background(), ref, 30)

	require.True(t, got.OK(), got.Message)
	assert.Equal(t, "Negatif", got.Label)
	assert.Equal(t, 1, store.opened)

	seen, err := os.ReadFile(filepath.Join(dir, "seen.txt"))
	require.NoError(t, err)
	assert.Equal(t, "isi-audio", string(seen))

	staged, err := os.ReadFile(filepath.Join(dir, "path.txt"))
	require.NoError(t, err)
	stagedPath := strings.TrimSpace(string(staged))
	assert.True(t, strings.HasPrefix(filepath.Base(stagedPath), "temp_"))
	assert.Equal(t, ".mp4", filepath.Ext(stagedPath))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file must be removed")
}

func TestSubprocessPredictor_RemoteAudioCleanedOnTimeout(t *testing.T) {
	dir := t.TempDir()
	tmp := t.TempDir()
	script := writeScript(t, dir, "exec sleep 5\n")
	p := NewSubprocessPredictor(SubprocessConfig{
		Bin:     "sh",
		Script:  script,
		Timeout: 200 * time.Millisecond,
		TempDir: tmp,
	}, &remoteStore{data: []byte("x")}, zap.NewNop())

	got := p.Predict(context.Background(), &models.AudioReference{Handle: "a.webm"}, 30)

	assert.Equal(t, FailureTimeout, got.Failure)
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
