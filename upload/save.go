// SPDX-License-Identifier: EPL-2.0

package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/karamix/mixer"
	"go.uber.org/zap"
)

// FileSaver writes mixes into a directory as <title>-mixed.wav. It is the
// local counterpart of HTTPUploader.
type FileSaver struct {
	Dir string
	Log *zap.Logger
}

// Upload saves the file using songID as the title.
func (s FileSaver) Upload(ctx context.Context, songID string, file *mixer.EncodedFile) error {
	_, err := s.Save(ctx, songID, file)
	return err
}

// Save writes the mix and returns its path. The file appears whole or not
// at all.
func (s FileSaver) Save(ctx context.Context, title string, file *mixer.EncodedFile) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", ErrNoFile
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveMix, err)
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveMix, err)
	}

	path := filepath.Join(dir, file.Filename(sanitize(title)))

	tmp, err := os.CreateTemp(dir, ".karamix-*.wav")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveMix, err)
	}
	defer os.Remove(tmp.Name()) // no-op after the rename

	if _, err := tmp.Write(file.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %w", ErrSaveMix, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveMix, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveMix, err)
	}

	if s.Log != nil {
		s.Log.Info("mix saved", zap.String("path", path), zap.Int("bytes", len(file.Data)))
	}

	return path, nil
}

// sanitize keeps titles from escaping the directory.
func sanitize(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, title)

	return strings.Trim(title, ".")
}
