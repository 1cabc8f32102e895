// Package requirements renders previews for the requirements list editor.
package requirements

import (
	"io"
	"net/http"

	errorsfeature "github.com/dalemusser/stratadash/internal/app/features/errors"
	"github.com/dalemusser/stratadash/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratadash/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"go.uber.org/zap"
)

// MaxPreviewBytes caps the size of a preview request body.
const MaxPreviewBytes = 1 << 20

// Handler serves requirements previews.
type Handler struct {
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new requirements handler.
func NewHandler(errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{errLog: errLog, logger: logger}
}

// Routes returns the router for the requirements feature.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/preview", h.ServePreview)
	r.HandleFunc("/preview/", h.ServePreview)
	return r
}

// ServePreview takes the editor contents as the raw request body and
// answers with a sanitized HTML fragment.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		jsonutil.MethodNotAllowed(w, "must use POST")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPreviewBytes))
	if err != nil {
		h.errLog.Log(r, "failed to read preview body", err)
		jsonutil.BadRequest(w, "could not read request body")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(Render(body)))
}

// Render converts editor text to sanitized HTML.
func Render(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	// parsers keep state and are not reusable
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.Render(p.Parse(src), renderer)
	return htmlsanitize.Sanitize(string(out))
}
