package httpx

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/server/storage"
	"github.com/go-chi/chi/v5"
)

const (
	profileImageField = "profile_image"
	// multipart parts above this size are spooled to temp files
	multipartMemory = 1 << 20
)

type uploadedPathKey struct{}

func withUploadedPath(ctx context.Context, p string) context.Context {
	return context.WithValue(ctx, uploadedPathKey{}, p)
}

// uploadedPath returns the public path of the file stored for this request.
func uploadedPath(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(uploadedPathKey{}).(string)
	return p, ok && p != ""
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// upload caps the request body, and for multipart requests stores the
// profile_image file, if any, through the blob store. The resulting public
// path is put in the request context.
func (s *Server) upload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.MaxUploadSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
		}

		if !isMultipart(r) {
			next.ServeHTTP(w, r)
			return
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeBodyError(w, err)
			return
		}

		file, header, err := r.FormFile(profileImageField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				next.ServeHTTP(w, r)
				return
			}
			writeBodyError(w, err)
			return
		}
		defer file.Close()

		name := storage.FileName(s.now(), header.Filename)
		if err := s.blobs.Save(r.Context(), name, file, header.Size, header.Header.Get("Content-Type")); err != nil {
			s.writeInternalError(w, r, "error saving upload", err)
			return
		}
		s.logger.Debug(r.Context(), "upload stored", "name", name, "size", header.Size)

		ctx := withUploadedPath(r.Context(), s.opts.UploadURLPrefix+"/"+name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeBodyError answers 413 for oversized bodies and 400 for anything else
// that kept the body from being read.
func writeBodyError(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeMessage(w, http.StatusBadRequest, "Invalid request body")
}

// handleUploadedFile streams a stored upload back with a content type guessed
// from its extension.
func (s *Server) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := s.blobs.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}
		s.writeInternalError(w, r, "error opening upload", err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn(r.Context(), "error streaming upload", "name", name, "error", err)
	}
}
