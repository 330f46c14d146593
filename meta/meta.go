package meta

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// ImageType is the canonical identifier of an image encoding (jpeg, webp, avif, ...)
type ImageType string

const (
	TypeJPEG ImageType = "jpeg"
	TypePNG  ImageType = "png"
	TypeWebP ImageType = "webp"
	TypeAVIF ImageType = "avif"
	TypeGIF  ImageType = "gif"
)

// ImageMeta describes the variants the build step generated for one source image
type ImageMeta struct {
	Widths      []int       `yaml:"widths" json:"widths"`
	Formats     []ImageType `yaml:"formats" json:"formats"`
	AspectRatio float64     `yaml:"aspectRatio" json:"aspectRatio"`
	Fingerprint string      `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
}

// Meta maps normalized image paths to their metadata
type Meta struct {
	Images       map[string]ImageMeta `yaml:"images" json:"images"`
	DeviceWidths []int                `yaml:"deviceWidths,omitempty" json:"deviceWidths,omitempty"`
}

// NormalizeName strips a single leading path separator
func NormalizeName(name string) string {
	return strings.TrimPrefix(name, "/")
}

// Load reads and parses the metadata file written by the image build step.
// JSON and YAML files are both accepted.
func Load(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta file: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes metadata from memory and validates it
func Parse(data []byte) (*Meta, error) {
	var raw Meta
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse meta: %w", err)
	}

	m := &Meta{
		Images:       make(map[string]ImageMeta, len(raw.Images)),
		DeviceWidths: raw.DeviceWidths,
	}
	for name, im := range raw.Images {
		key := NormalizeName(name)
		if _, dup := m.Images[key]; dup {
			return nil, fmt.Errorf("duplicate image %q after normalization", key)
		}
		m.Images[key] = im
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid meta: %w", err)
	}
	return m, nil
}

// Validate checks that every image entry can be served
func (m *Meta) Validate() error {
	for name, im := range m.Images {
		if name == "" {
			return fmt.Errorf("image with empty name")
		}
		if len(im.Widths) == 0 {
			return fmt.Errorf("image %q has no widths", name)
		}
		for _, w := range im.Widths {
			if w <= 0 {
				return fmt.Errorf("image %q has invalid width %d", name, w)
			}
		}
		if len(im.Formats) == 0 {
			return fmt.Errorf("image %q has no formats", name)
		}
		if im.AspectRatio <= 0 {
			return fmt.Errorf("image %q has invalid aspect ratio %v", name, im.AspectRatio)
		}
	}
	return nil
}

// Lookup returns the metadata of a normalized image name
func (m *Meta) Lookup(name string) (ImageMeta, bool) {
	if m == nil {
		return ImageMeta{}, false
	}
	im, ok := m.Images[NormalizeName(name)]
	return im, ok
}

// Store holds the current metadata snapshot. Snapshots are replaced whole and
// never modified after Swap, so readers need no locking.
type Store struct {
	current atomic.Pointer[Meta]
}

// NewStore creates a store holding m
func NewStore(m *Meta) *Store {
	s := &Store{}
	if m == nil {
		m = &Meta{Images: map[string]ImageMeta{}}
	}
	s.current.Store(m)
	return s
}

// Current returns the active snapshot
func (s *Store) Current() *Meta {
	return s.current.Load()
}

// Swap installs a new snapshot and returns the previous one
func (s *Store) Swap(m *Meta) *Meta {
	return s.current.Swap(m)
}

// Reload loads path and swaps it in. The previous snapshot stays active on error.
func (s *Store) Reload(path string) error {
	m, err := Load(path)
	if err != nil {
		return err
	}
	s.Swap(m)
	return nil
}
