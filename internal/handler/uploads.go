package handler

import (
	"io"
	"net/http"
	"strconv"
)

// GetUpload handles GET /uploads/{key} by streaming the stored image.
// Keys are content-unique, so responses are cacheable forever.
func (s *Server) GetUpload(w http.ResponseWriter, r *http.Request) {
	obj, err := s.images.Open(r.Context(), chiParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err, "image")
		return
	}
	defer obj.Body.Close()

	h := w.Header()
	h.Set("Content-Type", obj.ContentType)
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	h.Set("X-Content-Type-Options", "nosniff")
	if obj.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if !obj.ModTime.IsZero() {
		h.Set("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		s.logger.WarnContext(r.Context(), "image stream interrupted", "error", err)
	}
}
