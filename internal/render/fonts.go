package render

import (
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Candidate font files, probed in order. A CJK-capable face ships with the
// deployment first, then the usual system locations per OS family. Entries
// for other platforms simply fail the stat and fall through.
var fontCandidates = []string{
	"assets/fonts/HYSongYunLangHeiW-1.ttf",
	// Windows
	"C:/Windows/Fonts/msyh.ttc",
	"C:/Windows/Fonts/msyhbd.ttc",
	"C:/Windows/Fonts/simhei.ttf",
	"C:/Windows/Fonts/simsun.ttc",
	// Linux
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	// macOS
	"/System/Library/Fonts/PingFang.ttc",
}

const faceCacheLimit = 64

var (
	fontMu     sync.Mutex
	fontProbed bool
	fontParsed *truetype.Font // resolved font, nil when no candidate loaded
	faceCache  map[float64]font.Face

	builtinOnce sync.Once
	builtinFont *truetype.Font
)

// fontFace returns a face for the given pixel size. The first call probes
// the candidate list and pins the winning font for the process lifetime;
// failures fall through candidate by candidate and bottom out on the
// embedded Go Regular face, so the result is never nil and resolution
// never errors. Concurrent first calls may probe redundantly, which is
// harmless: every racer resolves the same path.
func fontFace(px float64) font.Face {
	fontMu.Lock()
	defer fontMu.Unlock()

	if !fontProbed {
		fontProbed = true
		fontParsed = probeFonts()
	}
	if faceCache == nil {
		faceCache = make(map[float64]font.Face, faceCacheLimit)
	}
	if f, ok := faceCache[px]; ok {
		return f
	}

	src := fontParsed
	if src == nil {
		src = builtin()
	}
	face := truetype.NewFace(src, &truetype.Options{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if len(faceCache) >= faceCacheLimit {
		// Renders use a handful of sizes per scale factor; hitting the
		// bound means churn, so start over rather than track recency.
		faceCache = make(map[float64]font.Face, faceCacheLimit)
	}
	faceCache[px] = face
	return face
}

func probeFonts() *truetype.Font {
	for _, path := range fontCandidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			// TTC collections and damaged files land here; keep probing.
			continue
		}
		return f
	}
	return nil
}

func builtin() *truetype.Font {
	builtinOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			// The embedded font is a compile-time constant; this cannot
			// happen with a healthy toolchain.
			panic(err)
		}
		builtinFont = f
	})
	return builtinFont
}
