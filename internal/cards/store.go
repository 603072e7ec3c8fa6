package cards

import (
	"fmt"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

// minImageSize guards against serving a corrupt or blank render: a real
// card always encodes to more than 1 KiB.
const minImageSize = 1024

// Store writes rendered cards into the cache directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "cache"
	}
	return &Store{dir: dir}
}

// SaveTemp encodes the card to a uniquely named PNG and returns its path.
// Suspiciously small files are removed and reported as an error.
func (s *Store) SaveTemp(img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("card-%s-%04d.png", time.Now().Format("20060102-150405"), rand.Intn(10000))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() <= minImageSize {
		logger.Warn("cards: rendered image too small", logger.Fields{"path": path, "size": info.Size()})
		os.Remove(path)
		return "", fmt.Errorf("rendered image too small (%d bytes)", info.Size())
	}

	logger.Info("cards: card image saved", logger.Fields{"path": path, "size": info.Size()})
	return path, nil
}
