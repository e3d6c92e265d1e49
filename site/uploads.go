package site

import (
	"net/http"
	"strings"

	"walkintovoid/apperror"

	"go.uber.org/zap"
)

const bannerPrefix = "banners/"

// UploadBanner stores a post banner image and returns its public URL.
func (s *Server) UploadBanner(w http.ResponseWriter, r *http.Request) {
	if s.Uploader == nil {
		renderJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "upload not configured"})
		return
	}

	if s.Options.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.Options.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(s.Options.MaxUploadBytes); err != nil {
		s.renderError(w, r, apperror.Validation("failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderError(w, r, apperror.Validation("missing file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.renderError(w, r, apperror.Validation("only images are allowed"))
		return
	}

	url, err := s.Uploader.Upload(r.Context(), bannerPrefix, header.Filename, file, contentType)
	if err != nil {
		s.renderError(w, r, apperror.Unexpected(err, "Failed to upload image"))
		return
	}
	s.Logger.Info("banner uploaded", zap.String("url", url), zap.String("by", getSignedInUserOrNil(r).ID))
	renderJSON(w, http.StatusCreated, map[string]string{"url": url})
}
