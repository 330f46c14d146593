package images

import (
	"strconv"
	"strings"

	"respimg/meta"
)

// SelectWidth picks the width to serve for a requested pixel width w.
//
// The result is the smallest available width >= w. When every available
// width is below w, the largest one is used instead. Order of widths does
// not matter. ok is false only when widths is empty.
func SelectWidth(widths []int, w int) (selected int, ok bool) {
	for _, c := range widths {
		switch {
		case !ok:
			selected, ok = c, true
		case c >= w && selected >= w:
			if c < selected {
				selected = c
			}
		default:
			if c > selected {
				selected = c
			}
		}
	}
	return selected, ok
}

// Filename composes the URL of a generated image variant. It must match the
// naming used by the image build step:
//
//	{rootURL}{name without extension}{width}w[-{fingerprint}].{extension}
func Filename(rootURL, name string, width int, t meta.ImageType, fingerprint string) (string, error) {
	name = meta.NormalizeName(name)
	if _, ok := extension(name); !ok {
		return "", &Error{Image: name, Err: ErrNoExtension}
	}
	base := name[:strings.LastIndexByte(name, '.')]

	var b strings.Builder
	b.WriteString(rootURL)
	b.WriteString(base)
	b.WriteString(strconv.Itoa(width))
	b.WriteByte('w')
	if fingerprint != "" {
		b.WriteByte('-')
		b.WriteString(fingerprint)
	}
	b.WriteByte('.')
	b.WriteString(ExtensionForType(t))
	return b.String(), nil
}
