package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/malik-javed/ez-secure-files/internal/model"
)

type fileResp struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadDate  string `json:"upload_date"`
	DownloadURL string `json:"download_url,omitempty"`
}

func toFileResp(rec *model.FileRecord) fileResp {
	return fileResp{
		ID:         rec.ID.String(),
		Filename:   rec.OrigName,
		FileType:   rec.ContentType,
		SizeBytes:  rec.SizeBytes,
		UploadDate: rec.UploadedAt.UTC().Format(time.RFC3339),
	}
}

// handleUpload streams the multipart "file" field into the blob store. The
// request body is capped at the configured maximum before any parsing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: bad multipart body", model.ErrInvalidInput))
		return
	}

	var part io.Reader
	var filename, contentType string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: bad multipart body", model.ErrInvalidInput))
			return
		}
		if p.FormName() != "file" {
			_ = p.Close()
			continue
		}
		part = p
		filename = p.FileName()
		contentType = p.Header.Get("Content-Type")
		break
	}
	if part == nil {
		s.writeError(w, r, fmt.Errorf("%w: missing file field", model.ErrInvalidInput))
		return
	}

	acc := accountFromContext(r.Context())
	rec, err := s.cfg.Files.Upload(r.Context(), acc, filename, contentType, -1, part)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFileResp(rec))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("%w: bad limit", model.ErrInvalidInput))
			return
		}
		limit = n
	}

	recs, err := s.cfg.Files.List(r.Context(), accountFromContext(r.Context()), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]fileResp, 0, len(recs))
	for i := range recs {
		out = append(out, toFileResp(&recs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRequestDownload(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: bad file id", model.ErrInvalidInput))
		return
	}

	downloadURL, err := s.cfg.Files.RequestDownload(r.Context(), accountFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"download_url": downloadURL})
}

// handleSecureDownload redeems a capability and streams the blob. No session
// check: the capability is the whole authorization.
func (s *Server) handleSecureDownload(w http.ResponseWriter, r *http.Request) {
	capability := r.URL.Query().Get("token")
	if capability == "" {
		s.writeError(w, r, fmt.Errorf("%w: missing token", model.ErrInvalidInput))
		return
	}

	rec, body, size, err := s.cfg.Files.Redeem(r.Context(), capability)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = body.Close() }()

	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rec.OrigName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil && !errors.Is(err, io.EOF) {
		s.cfg.Log.Error("download stream interrupted",
			"request_id", RequestIDFromContext(r.Context()),
			"file_id", rec.ID,
			"error", err,
		)
	}
}
