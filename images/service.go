package images

import (
	"math"
	"strconv"
	"strings"

	"respimg/meta"
	"respimg/sizing"
)

// Image is one generated variant of a source image
type Image struct {
	Image  string         `json:"image"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Type   meta.ImageType `json:"type"`
}

// Source provides the current metadata snapshot
type Source interface {
	Current() *meta.Meta
}

// Service answers queries about the images generated by the build step.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	source  Source
	rootURL string
	policy  sizing.Policy
}

// NewService creates a service over source. rootURL is prepended to every
// composed filename; policy translates size hints for ImageBySize and
// defaults to a server-side viewport when nil.
func NewService(source Source, rootURL string, policy sizing.Policy) *Service {
	if policy == nil {
		policy = sizing.Viewport{}
	}
	return &Service{
		source:  source,
		rootURL: rootURL,
		policy:  policy,
	}
}

// RootURL returns the prefix used for composed filenames
func (s *Service) RootURL() string {
	return s.rootURL
}

// Meta returns the metadata of an image
func (s *Service) Meta(name string) (meta.ImageMeta, error) {
	name = meta.NormalizeName(name)
	im, ok := s.source.Current().Lookup(name)
	if !ok {
		return meta.ImageMeta{}, &Error{Image: name, Err: ErrNotFound}
	}
	return im, nil
}

// Images returns every variant of an image. An empty type returns all
// formats for each width.
func (s *Service) Images(name string, t meta.ImageType) ([]Image, error) {
	name = meta.NormalizeName(name)
	im, err := s.Meta(name)
	if err != nil {
		return nil, err
	}

	formats := im.Formats
	if t != "" {
		formats = []meta.ImageType{t}
	}

	images := make([]Image, 0, len(im.Widths)*len(formats))
	for _, width := range im.Widths {
		for _, format := range formats {
			img, err := s.variant(name, im, width, format)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
	}
	return images, nil
}

// AvailableWidths returns the generated widths of an image
func (s *Service) AvailableWidths(name string) ([]int, error) {
	im, err := s.Meta(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), im.Widths...), nil
}

// AvailableTypes returns the generated formats of an image
func (s *Service) AvailableTypes(name string) ([]meta.ImageType, error) {
	im, err := s.Meta(name)
	if err != nil {
		return nil, err
	}
	return append([]meta.ImageType(nil), im.Formats...), nil
}

// AspectRatio returns width/height of an image
func (s *Service) AspectRatio(name string) (float64, error) {
	im, err := s.Meta(name)
	if err != nil {
		return 0, err
	}
	return im.AspectRatio, nil
}

// Type infers the image type from the extension of name
func (s *Service) Type(name string) (meta.ImageType, error) {
	return TypeOf(name)
}

// TypeOf infers the image type from the extension of name
func TypeOf(name string) (meta.ImageType, error) {
	name = meta.NormalizeName(name)
	ext, ok := extension(name)
	if !ok {
		return "", &Error{Image: name, Err: ErrNoExtension}
	}
	return TypeForExtension(ext), nil
}

// ImageByWidth returns the variant that best fits width pixels. An empty
// type is inferred from the extension of name.
func (s *Service) ImageByWidth(name string, width int, t meta.ImageType) (Image, error) {
	name = meta.NormalizeName(name)
	im, err := s.Meta(name)
	if err != nil {
		return Image{}, err
	}
	if t == "" {
		if t, err = TypeOf(name); err != nil {
			return Image{}, err
		}
	}

	selected, ok := SelectWidth(im.Widths, width)
	if !ok {
		return Image{}, &Error{Image: name, Err: ErrNoWidths}
	}
	return s.variant(name, im, selected, t)
}

// ImageBySize returns the variant that best fits size percent of the
// viewport, using the service's sizing policy
func (s *Service) ImageBySize(name string, size int, t meta.ImageType) (Image, error) {
	return s.ImageBySizeFor(s.policy, name, size, t)
}

// ImageBySizeFor is ImageBySize with an explicit sizing policy
func (s *Service) ImageBySizeFor(policy sizing.Policy, name string, size int, t meta.ImageType) (Image, error) {
	return s.ImageByWidth(name, policy.DestinationWidth(size), t)
}

// ImageFilename returns the URL of one variant of an image
func (s *Service) ImageFilename(name string, width int, t meta.ImageType) (string, error) {
	im, err := s.Meta(name)
	if err != nil {
		return "", err
	}
	return Filename(s.rootURL, name, width, t, im.Fingerprint)
}

// SrcSet returns a srcset attribute value listing every width of one type.
// An empty type is inferred from the extension of name.
func (s *Service) SrcSet(name string, t meta.ImageType) (string, error) {
	if t == "" {
		var err error
		if t, err = TypeOf(name); err != nil {
			return "", err
		}
	}
	images, err := s.Images(name, t)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(images))
	for _, img := range images {
		parts = append(parts, img.Image+" "+strconv.Itoa(img.Width)+"w")
	}
	return strings.Join(parts, ", "), nil
}

func (s *Service) variant(name string, im meta.ImageMeta, width int, t meta.ImageType) (Image, error) {
	filename, err := Filename(s.rootURL, name, width, t, im.Fingerprint)
	if err != nil {
		return Image{}, err
	}
	return Image{
		Image:  filename,
		Width:  width,
		Height: int(math.Round(float64(width) / im.AspectRatio)),
		Type:   t,
	}, nil
}
