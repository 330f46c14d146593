package sizing

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultScreenWidth is used when no screen is known (server side rendering)
	DefaultScreenWidth = 320
	// DefaultPixelRatio is used when the device pixel ratio is unknown
	DefaultPixelRatio = 1.0
)

// Policy translates a viewport size hint into a destination pixel width
type Policy interface {
	// DestinationWidth returns the physical pixel width for size, given as a
	// percentage of the viewport width. Zero means the full viewport.
	DestinationWidth(size int) int
}

// Viewport describes the screen an image is rendered for
type Viewport struct {
	ScreenWidth int
	PixelRatio  float64
}

// PhysicalWidth returns the screen width in device pixels
func (v Viewport) PhysicalWidth() float64 {
	screen := v.ScreenWidth
	if screen <= 0 {
		screen = DefaultScreenWidth
	}
	ratio := v.PixelRatio
	if ratio <= 0 {
		ratio = DefaultPixelRatio
	}
	return float64(screen) * ratio
}

// DestinationWidth implements Policy
func (v Viewport) DestinationWidth(size int) int {
	if size <= 0 {
		size = 100
	}
	return int(math.Round(v.PhysicalWidth() * float64(size) / 100))
}

// FromRequest builds a viewport from the client hints of r. Missing or
// malformed hints keep the corresponding fallback value.
func FromRequest(r *http.Request, fallback Viewport) Viewport {
	v := fallback

	if w, ok := intHeader(r, "Sec-CH-Viewport-Width", "Viewport-Width"); ok {
		v.ScreenWidth = w
	}
	if dpr, ok := floatHeader(r, "Sec-CH-DPR", "DPR"); ok {
		v.PixelRatio = dpr
	}

	return v
}

func headerValue(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func intHeader(r *http.Request, names ...string) (int, bool) {
	v := headerValue(r, names...)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func floatHeader(r *http.Request, names ...string) (float64, bool) {
	v := headerValue(r, names...)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
