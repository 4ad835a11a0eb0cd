package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// DownloadObject streams key to dest (a file, or a directory to write into)
// and returns the written path. A non-nil progress writer gets a byte progress bar.
func DownloadObject(ctx context.Context, store Store, key, dest string, progress io.Writer) (string, error) {
	target := dest
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		target = filepath.Join(dest, path.Base(key))
	}

	body, size, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file '%s': %w", target, err)
	}

	var w io.Writer = file
	if progress != nil {
		if size <= 0 {
			size = -1
		}
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription(path.Base(key)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		w = io.MultiWriter(file, bar)
		defer bar.Finish()
	}

	if _, err := io.Copy(w, body); err != nil {
		file.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write file '%s': %w", target, err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to write file '%s': %w", target, err)
	}
	return target, nil
}
