package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "static", "uploads")
	s, err := NewLocalStorage(Config{BasePath: dir})
	require.NoError(t, err)
	return s, dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestLocalStorageSaveRoundTrip(t *testing.T) {
	s, dir := newLocal(t)
	payload := []byte("RIFF\x00\x00\x00\x00WAVEfmt ")

	name, n, err := s.Save(context.Background(), Fixed("take.wav"), bytes.NewReader(payload), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "take.wav", name)
	assert.Equal(t, int64(len(payload)), n)

	got, err := os.ReadFile(filepath.Join(dir, "take.wav"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, []string{"take.wav"}, listDir(t, dir), "temp file must be cleaned up")
}

func TestLocalStorageCreatesMissingDirectory(t *testing.T) {
	s, dir := newLocal(t)
	require.NoError(t, os.RemoveAll(dir))

	_, _, err := s.Save(context.Background(), Fixed("a.wav"), strings.NewReader("a"), "audio/wav")
	require.NoError(t, err)

	// повторный вызов при существующей директории ведёт себя так же
	_, _, err = s.Save(context.Background(), Fixed("b.wav"), strings.NewReader("b"), "audio/wav")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.wav", "b.wav"}, listDir(t, dir))
}

func TestLocalStorageNeverOverwrites(t *testing.T) {
	s, dir := newLocal(t)

	_, _, err := s.Save(context.Background(), Fixed("dup.wav"), strings.NewReader("first"), "audio/wav")
	require.NoError(t, err)

	_, _, err = s.Save(context.Background(), Fixed("dup.wav"), strings.NewReader("second"), "audio/wav")
	assert.ErrorIs(t, err, ErrExists)

	got, err := os.ReadFile(filepath.Join(dir, "dup.wav"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
	assert.Equal(t, []string{"dup.wav"}, listDir(t, dir))
}

func TestLocalStorageConcurrentSameName(t *testing.T) {
	s, dir := newLocal(t)

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.Save(context.Background(), Fixed("same.wav"), strings.NewReader(fmt.Sprint(i)), "audio/wav")
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrExists)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, []string{"same.wav"}, listDir(t, dir))
}

func TestLocalStorageNamerPicksNextFreeName(t *testing.T) {
	s, dir := newLocal(t)
	names := func(attempt int) string {
		if attempt == 0 {
			return "dup.wav"
		}
		return fmt.Sprintf("dup_%d.wav", attempt)
	}

	first, _, err := s.Save(context.Background(), names, strings.NewReader("first"), "audio/wav")
	require.NoError(t, err)
	second, _, err := s.Save(context.Background(), names, strings.NewReader("second"), "audio/wav")
	require.NoError(t, err)

	assert.Equal(t, "dup.wav", first)
	assert.Equal(t, "dup_1.wav", second)
	assert.ElementsMatch(t, []string{"dup.wav", "dup_1.wav"}, listDir(t, dir))

	got, err := os.ReadFile(filepath.Join(dir, "dup_1.wav"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

type failingReader struct {
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestLocalStorageNoPartialFileOnReadError(t *testing.T) {
	s, dir := newLocal(t)

	_, _, err := s.Save(context.Background(), Fixed("broken.wav"), &failingReader{}, "audio/wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.Empty(t, listDir(t, dir))
}

func TestLocalStorageCancelledContext(t *testing.T) {
	s, dir := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Save(ctx, Fixed("late.wav"), strings.NewReader("data"), "audio/wav")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, listDir(t, dir))
}

func TestLocalStorageRejectsUnsafeNames(t *testing.T) {
	s, _ := newLocal(t)

	for _, name := range []string{"", "..", "../x.wav", "a/b.wav", `a\b.wav`, "/abs.wav"} {
		_, _, err := s.Save(context.Background(), Fixed(name), strings.NewReader("x"), "audio/wav")
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestLocalStorageDirectoryIsFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "uploads")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0o600))

	_, err := NewLocalStorage(Config{BasePath: base})
	assert.Error(t, err)

	s := &LocalStorage{basePath: base}
	assert.Error(t, s.Ping(context.Background()))
	_, _, err = s.Save(context.Background(), Fixed("a.wav"), strings.NewReader("a"), "audio/wav")
	assert.Error(t, err)
}

func TestNewStorageUnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.ErrorContains(t, err, "unsupported storage type")
}
