package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "file too large or malformed multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		respondError(w, http.StatusUnprocessableEntity, "file type not allowed")
		return
	}

	name := uuid.NewString() + ext
	dest := filepath.Join(s.cfg.Upload.Dir, name)

	out, err := os.Create(dest)
	if err != nil {
		log.Printf("create upload file: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dest)
		log.Printf("write upload file: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"path": filepath.ToSlash(dest),
	})
}
