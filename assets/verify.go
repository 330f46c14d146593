package assets

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"respimg/images"
	"respimg/meta"
)

// Missing describes a variant listed in the metadata without a file on disk
type Missing struct {
	Image string
	Width int
	Type  meta.ImageType
	Path  string
}

// Verify checks that every width and format of every image in m has a
// generated file below dir. It returns the variants without a file, sorted
// by path.
func Verify(m *meta.Meta, dir string) ([]Missing, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat assets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets dir is not a directory: %s", dir)
	}

	var missing []Missing
	for name, im := range m.Images {
		for _, width := range im.Widths {
			for _, format := range im.Formats {
				rel, err := images.Filename("", name, width, format, im.Fingerprint)
				if err != nil {
					return nil, err
				}

				path := filepath.Join(dir, filepath.FromSlash(rel))
				if _, err := os.Stat(path); err != nil {
					if !os.IsNotExist(err) {
						return nil, fmt.Errorf("failed to stat %s: %w", path, err)
					}
					missing = append(missing, Missing{
						Image: name,
						Width: width,
						Type:  format,
						Path:  path,
					})
				}
			}
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		return missing[i].Path < missing[j].Path
	})
	return missing, nil
}

// VerifyAndLog runs Verify and logs every missing file. It returns an error
// if any file is missing.
func VerifyAndLog(m *meta.Meta, dir string) error {
	missing, err := Verify(m, dir)
	if err != nil {
		return err
	}

	for _, mf := range missing {
		log.Printf("Missing asset: %s (%s %dw %s)", mf.Path, mf.Image, mf.Width, mf.Type)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d generated image files missing in %s", len(missing), dir)
	}

	log.Printf("Verified %d images in %s", len(m.Images), dir)
	return nil
}
