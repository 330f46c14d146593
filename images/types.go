package images

import (
	"strings"

	"respimg/meta"
)

// Canonical types whose file extension differs from the type name.
// Everything else uses the type name as extension.
var typeExtensions = map[meta.ImageType]string{
	meta.TypeJPEG: "jpg",
}

var extensionTypes = map[string]meta.ImageType{
	"jpg": meta.TypeJPEG,
}

// ExtensionForType returns the file extension written for images of type t
func ExtensionForType(t meta.ImageType) string {
	if ext, ok := typeExtensions[t]; ok {
		return ext
	}
	return string(t)
}

// TypeForExtension returns the image type for a file extension (without dot)
func TypeForExtension(ext string) meta.ImageType {
	if t, ok := extensionTypes[strings.ToLower(ext)]; ok {
		return t
	}
	return meta.ImageType(ext)
}

// MIMEType returns the media type for t, e.g. for <source type="...">
func MIMEType(t meta.ImageType) string {
	return "image/" + string(t)
}

// extension returns the text after the last dot of the base name, if any
func extension(name string) (string, bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || dot < strings.LastIndexByte(name, '/') || dot == len(name)-1 {
		return "", false
	}
	return name[dot+1:], true
}
