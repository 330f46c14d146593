package helpers

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"respimg/images"
	"respimg/meta"
	"respimg/sizing"
)

const pageTemplate = `<!DOCTYPE html>
<html><body>
{{with $m := responsiveImageMeta "/assets/images/tests/test.png"}}
<picture>
  {{range $m.Formats}}<source type="{{responsiveImageMIME .}}" srcset="{{responsiveImageSrcSet "/assets/images/tests/test.png" .}}">{{end}}
  <img data-test-simple-image src="{{responsiveImage "/assets/images/tests/test.png" 640}}">
</picture>
{{end}}
{{with responsiveImageBySize "assets/images/tests/test.png" 50}}
<img data-test-sized-image src="{{.Image}}" width="{{.Width}}" height="{{.Height}}">
{{end}}
</body></html>`

func newService(t *testing.T) *images.Service {
	t.Helper()
	m, err := meta.Parse([]byte(`{"images": {
		"assets/images/tests/test.png": {"widths": [50, 100, 640], "formats": ["png", "webp"], "aspectRatio": 2, "fingerprint": "a1b2c3"}
	}}`))
	if err != nil {
		t.Fatalf("Failed to parse meta: %v", err)
	}
	return images.NewService(meta.NewStore(m), "/", nil)
}

func render(t *testing.T, funcs template.FuncMap, text string) *goquery.Document {
	t.Helper()

	tmpl, err := template.New("page").Funcs(funcs).Parse(text)
	if err != nil {
		t.Fatalf("Failed to parse template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		t.Fatalf("Failed to execute template: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("Failed to parse rendered HTML: %v", err)
	}
	return doc
}

func TestRendersImage(t *testing.T) {
	doc := render(t, FuncMap(newService(t)), pageTemplate)

	img := doc.Find("img[data-test-simple-image]")
	if img.Length() != 1 {
		t.Fatalf("Expected 1 simple image, got %d", img.Length())
	}
	src, _ := img.Attr("src")
	if !regexp.MustCompile(`^/assets/images/tests/test640w(-\w+)?\.png$`).MatchString(src) {
		t.Errorf("Unexpected src: %s", src)
	}

	sources := doc.Find("picture source")
	if sources.Length() != 2 {
		t.Fatalf("Expected 2 sources, got %d", sources.Length())
	}
	webp := sources.Eq(1)
	if typ, _ := webp.Attr("type"); typ != "image/webp" {
		t.Errorf("Expected image/webp source, got %s", typ)
	}
	srcset, _ := webp.Attr("srcset")
	if !strings.Contains(srcset, "/assets/images/tests/test100w-a1b2c3.webp 100w") {
		t.Errorf("Unexpected srcset: %s", srcset)
	}
}

func TestRendersSizedImage(t *testing.T) {
	// The default server viewport is 320px wide, so size 50 asks for 160px
	doc := render(t, FuncMap(newService(t)), pageTemplate)

	img := doc.Find("img[data-test-sized-image]")
	if w, _ := img.Attr("width"); w != "640" {
		t.Errorf("Expected width 640 for 160px request, got %s", w)
	}
	if h, _ := img.Attr("height"); h != "320" {
		t.Errorf("Expected height 320, got %s", h)
	}

	doc = render(t, FuncMapFor(newService(t), sizing.Viewport{ScreenWidth: 100, PixelRatio: 1}), pageTemplate)
	img = doc.Find("img[data-test-sized-image]")
	if w, _ := img.Attr("width"); w != "50" {
		t.Errorf("Expected width 50 for 50px request, got %s", w)
	}
}

func TestUnknownImageFailsTemplate(t *testing.T) {
	tmpl := template.Must(template.New("page").Funcs(FuncMap(newService(t))).Parse(`<img src="{{responsiveImage "missing.png" 100}}">`))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, nil)
	if err == nil {
		t.Fatal("Expected template execution to fail for unknown image")
	}
	if !strings.Contains(err.Error(), "image not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestResponsiveImageOfType(t *testing.T) {
	doc := render(t, FuncMap(newService(t)), `{{with responsiveImageOfType "assets/images/tests/test.png" 80 "webp"}}<img src="{{.Image}}">{{end}}`)

	src, _ := doc.Find("img").Attr("src")
	if src != "/assets/images/tests/test100w-a1b2c3.webp" {
		t.Errorf("Unexpected src: %s", src)
	}
}
