package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DirectorySource reads snapshots that an external capture tool writes into
// a directory. The newest image file is the current frame.
type DirectorySource struct {
	dir string

	mu    sync.Mutex
	inUse bool
}

func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{dir: dir}
}

func (s *DirectorySource) Open(ctx context.Context, constraints Constraints) (Stream, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPermissionDenied, s.dir)
	}
	if _, err := os.ReadDir(s.dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse {
		return nil, ErrSourceInUse
	}
	s.inUse = true

	slog.Info("Camera stream opened", "source", "directory", "dir", s.dir, "facing_mode", constraints.FacingMode, "width", constraints.Width, "height", constraints.Height)
	return &directoryStream{source: s}, nil
}

func (s *DirectorySource) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = false
}

type directoryStream struct {
	source *DirectorySource

	mu       sync.Mutex
	closed   bool
	lastPath string
	lastMod  time.Time
}

func (d *directoryStream) Frame() (image.Image, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, false
	}

	path, mod, ok := newestImage(d.source.dir)
	if !ok {
		return nil, false
	}
	if path == d.lastPath && mod.Equal(d.lastMod) {
		return nil, false
	}

	img, err := decodeImageFile(path)
	if err != nil {
		// likely caught mid-write; try again next tick
		slog.Debug("Unable to decode frame", "path", path, "err", err)
		return nil, false
	}

	d.lastPath = path
	d.lastMod = mod
	return img, true
}

func (d *directoryStream) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.source.release()
	slog.Info("Camera stream released", "source", "directory", "dir", d.source.dir)
	return nil
}

func newestImage(dir string) (string, time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", time.Time{}, false
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	return newest, newestMod, newest != ""
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}

func decodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}
