package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every call with a transport error
type failingStore struct{}

func (failingStore) ListKeys(ctx context.Context) ([]KeyEntry, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return nil, 0, errors.New("connection reset")
}

func TestDownloadObjectIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	store := newMemStore(map[string]string{"EventB/archive.zip": "zip-bytes"})

	target, err := DownloadObject(context.Background(), store, "EventB/archive.zip", dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive.zip"), target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
}

func TestDownloadObjectToFileWithProgress(t *testing.T) {
	target := filepath.Join(t.TempDir(), "renamed.zip")
	store := newMemStore(map[string]string{"a.zip": "0123456789"})

	var progress bytes.Buffer
	written, err := DownloadObject(context.Background(), store, "a.zip", target, &progress)
	require.NoError(t, err)
	assert.Equal(t, target, written)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}

func TestDownloadObjectErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := DownloadObject(context.Background(), newMemStore(nil), "missing.zip", dir, nil)
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	_, err = DownloadObject(context.Background(), failingStore{}, "x.zip", dir, nil)
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is created when the object cannot be opened")
}
