package cards

import (
	"image"
	"image/color"
	"os"
	"strings"
	"testing"
)

// noisyImage produces an image that cannot compress below the size guard.
func noisyImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7 % 251), uint8(y * 13 % 241), uint8((x ^ y) % 239), 255})
		}
	}
	return img
}

func TestSaveTemp(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.SaveTemp(noisyImage(400, 300))
	if err != nil {
		t.Fatalf("SaveTemp: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path = %q, want .png suffix", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if info.Size() <= minImageSize {
		t.Errorf("stored file is %d bytes, want > %d", info.Size(), minImageSize)
	}
}

func TestSaveTempRejectsTinyImage(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if _, err := store.SaveTemp(image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Fatal("expected error for sub-1KiB image")
	}

	// The rejected file must not linger.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected file left behind: %v", entries)
	}
}
