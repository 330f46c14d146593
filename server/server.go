package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"respimg/config"
	"respimg/helpers"
	"respimg/images"
	"respimg/meta"
	"respimg/sizing"
)

// Server exposes image queries over HTTP and serves the generated assets
type Server struct {
	cfg      *config.Config
	images   *images.Service
	viewport sizing.Viewport
	mux      *http.ServeMux
}

// MetaResponse is the body of /api/meta
type MetaResponse struct {
	Image       string           `json:"image"`
	Widths      []int            `json:"widths"`
	Types       []meta.ImageType `json:"types"`
	AspectRatio float64          `json:"aspectRatio"`
	Fingerprint string           `json:"fingerprint,omitempty"`
}

// SrcSetResponse is the body of /api/srcset
type SrcSetResponse struct {
	Image  string         `json:"image"`
	Type   meta.ImageType `json:"type"`
	SrcSet string         `json:"srcset"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new image server
func NewServer(cfg *config.Config, svc *images.Service) *Server {
	s := &Server{
		cfg:    cfg,
		images: svc,
		viewport: sizing.Viewport{
			ScreenWidth: cfg.Viewport.ScreenWidth,
			PixelRatio:  cfg.Viewport.PixelRatio,
		},
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/meta/{name...}", s.handleMeta)
	s.mux.HandleFunc("GET /api/images/{name...}", s.handleImages)
	s.mux.HandleFunc("GET /api/image/{name...}", s.handleImage)
	s.mux.HandleFunc("GET /api/srcset/{name...}", s.handleSrcSet)
	s.mux.HandleFunc("GET /preview/{name...}", s.handlePreview)

	// Serve generated assets under the root URL, unless it points at another host
	if s.cfg.Assets.Dir != "" && strings.HasPrefix(s.cfg.RootURL, "/") {
		prefix := s.cfg.RootURL
		s.mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.cfg.Assets.Dir))))
	}
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.cfg.Addr()
	log.Printf("Image server starting on %s", addr)

	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMeta returns widths, types and aspect ratio of an image
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	im, err := s.images.Meta(name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MetaResponse{
		Image:       meta.NormalizeName(name),
		Widths:      im.Widths,
		Types:       im.Formats,
		AspectRatio: im.AspectRatio,
		Fingerprint: im.Fingerprint,
	})
}

// handleImages lists every variant of an image, optionally of one type
func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t := meta.ImageType(r.URL.Query().Get("type"))

	list, err := s.images.Images(name, t)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// handleImage picks one variant by ?width= or by ?size= and the request's client hints
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	q := r.URL.Query()
	t := meta.ImageType(q.Get("type"))

	var (
		img images.Image
		err error
	)
	switch {
	case q.Has("width"):
		width, perr := strconv.Atoi(q.Get("width"))
		if perr != nil || width < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid width %q", q.Get("width"))})
			return
		}
		img, err = s.images.ImageByWidth(name, width, t)
	default:
		size := 0
		if q.Has("size") {
			var perr error
			size, perr = strconv.Atoi(q.Get("size"))
			if perr != nil || size < 0 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid size %q", q.Get("size"))})
				return
			}
		}
		viewport := sizing.FromRequest(r, s.viewport)
		img, err = s.images.ImageBySizeFor(viewport, name, size, t)
		w.Header().Add("Vary", "Sec-CH-Viewport-Width, Sec-CH-DPR, Viewport-Width, DPR")
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

// handleSrcSet returns the srcset value for one type of an image
func (s *Server) handleSrcSet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t := meta.ImageType(r.URL.Query().Get("type"))
	if t == "" {
		var err error
		if t, err = images.TypeOf(name); err != nil {
			writeError(w, err)
			return
		}
	}

	srcset, err := s.images.SrcSet(name, t)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SrcSetResponse{
		Image:  meta.NormalizeName(name),
		Type:   t,
		SrcSet: srcset,
	})
}

// handlePreview shows every variant of an image in a <picture> element
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	im, err := s.images.Meta(name)
	if err != nil {
		writeError(w, err)
		return
	}

	viewport := sizing.FromRequest(r, s.viewport)
	tmpl, err := template.New("preview").Funcs(helpers.FuncMapFor(s.images, viewport)).Parse(previewTemplate)
	if err != nil {
		log.Printf("Error parsing preview template: %v", err)
		http.Error(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, previewData{Name: meta.NormalizeName(name), Meta: im}); err != nil {
		log.Printf("Error rendering preview for %s: %v", name, err)
	}
}

type previewData struct {
	Name string
	Meta meta.ImageMeta
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// writeError maps image lookup errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case images.IsNotFound(err):
		status = http.StatusNotFound
	case images.IsMalformed(err):
		status = http.StatusBadRequest
	default:
		log.Printf("Image query failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Preview - {{.Name}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            max-width: 960px;
            margin: 40px auto;
            padding: 20px;
        }
        img { max-width: 100%; height: auto; }
        table { border-collapse: collapse; margin-top: 30px; }
        td, th { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
    </style>
</head>
<body>
    <h1>{{.Name}}</h1>
    <p>Aspect ratio: {{.Meta.AspectRatio}}</p>

    <picture>
        {{range .Meta.Formats}}<source type="{{responsiveImageMIME .}}" srcset="{{responsiveImageSrcSet $.Name .}}">
        {{end}}
        {{with responsiveImageBySize .Name 100}}<img data-preview-image src="{{.Image}}" width="{{.Width}}" height="{{.Height}}" alt="{{$.Name}}">{{end}}
    </picture>

    <table>
        <tr><th>Width</th><th>Type</th><th>File</th></tr>
        {{range $w := .Meta.Widths}}{{range $t := $.Meta.Formats}}{{with responsiveImageOfType $.Name $w $t}}
        <tr data-variant><td>{{.Width}}x{{.Height}}</td><td>{{.Type}}</td><td><a href="{{.Image}}">{{.Image}}</a></td></tr>
        {{end}}{{end}}{{end}}
    </table>
</body>
</html>
`
