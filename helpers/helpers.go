// Package helpers exposes the image service to html/template.
//
// Templates resolve generated image variants by name:
//
//	<img src="{{responsiveImage "assets/hero.jpg" 640}}"
//	     srcset="{{responsiveImageSrcSet "assets/hero.jpg" ""}}">
//
// Lookup failures are returned as errors and abort template execution.
package helpers

import (
	"html/template"

	"respimg/images"
	"respimg/meta"
	"respimg/sizing"
)

// FuncMap returns the template functions backed by s
func FuncMap(s *images.Service) template.FuncMap {
	return template.FuncMap{
		"responsiveImage": func(name string, width int) (string, error) {
			img, err := s.ImageByWidth(name, width, "")
			if err != nil {
				return "", err
			}
			return img.Image, nil
		},
		"responsiveImageOfType": func(name string, width int, t meta.ImageType) (images.Image, error) {
			return s.ImageByWidth(name, width, t)
		},
		"responsiveImageBySize": func(name string, size int) (images.Image, error) {
			return s.ImageBySize(name, size, "")
		},
		"responsiveImageSrcSet": func(name string, t meta.ImageType) (string, error) {
			return s.SrcSet(name, t)
		},
		"responsiveImageMeta": func(name string) (meta.ImageMeta, error) {
			return s.Meta(name)
		},
		"responsiveImageMIME": func(t meta.ImageType) string {
			return images.MIMEType(t)
		},
	}
}

// FuncMapFor returns the template functions with size hints resolved for a
// specific viewport, e.g. one built from a request's client hints
func FuncMapFor(s *images.Service, v sizing.Viewport) template.FuncMap {
	funcs := FuncMap(s)
	funcs["responsiveImageBySize"] = func(name string, size int) (images.Image, error) {
		return s.ImageBySizeFor(v, name, size, "")
	}
	return funcs
}
