package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/malik-javed/ez-secure-files/internal/auth"
	"github.com/malik-javed/ez-secure-files/internal/logging"
	"github.com/malik-javed/ez-secure-files/internal/model"
)

// FileStore is the file metadata collaborator. FindByID returns (nil, nil)
// when no record matches.
type FileStore interface {
	Insert(ctx context.Context, rec *model.FileRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error)
	ListAll(ctx context.Context, limit int) ([]model.FileRecord, error)
}

// BlobStore is the opaque byte storage collaborator.
type BlobStore interface {
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) (location string, written int64, err error)
	Read(ctx context.Context, location string) (io.ReadCloser, int64, error)
}

const defaultListLimit = 100

// FileService implements upload, listing, and the two-phase secure download.
type FileService struct {
	files       FileStore
	blobs       BlobStore
	caps        *auth.CapabilityCodec
	baseURL     string
	allowedExts map[string]struct{}
	log         *logging.Logger
}

func NewFileService(files FileStore, blobs BlobStore, caps *auth.CapabilityCodec, baseURL string, allowedExts []string, log *logging.Logger) *FileService {
	exts := make(map[string]struct{}, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &FileService{
		files:       files,
		blobs:       blobs,
		caps:        caps,
		baseURL:     strings.TrimRight(baseURL, "/"),
		allowedExts: exts,
		log:         log,
	}
}

// Upload stores the blob and then its metadata record. Uploads are gated on
// a verified uploader-role account. If the metadata write fails after the
// blob write succeeded, the orphaned blob is left in place and logged; there
// is no cross-store rollback.
func (s *FileService) Upload(ctx context.Context, acc *model.Account, origName, contentType string, size int64, r io.Reader) (*model.FileRecord, error) {
	if err := auth.RequireVerified(acc); err != nil {
		return nil, err
	}
	if err := auth.RequireRole(acc, model.RoleOps); err != nil {
		return nil, err
	}

	ext, err := s.allowedExtension(origName)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	// Non-guessable object key, decoupled from any user-supplied name.
	objectKey := "uploads/" + id.String()
	storedName := fmt.Sprintf("%s_%s.%s", acc.Username, time.Now().UTC().Format("20060102150405"), ext)

	location, written, err := s.blobs.Write(ctx, objectKey, r, size, contentType)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		size = written
	}

	rec := &model.FileRecord{
		ID:          id,
		OrigName:    origName,
		StoredName:  storedName,
		ContentType: contentType,
		SizeBytes:   size,
		ObjectKey:   location,
		UploadedBy:  acc.ID,
	}
	if err := s.files.Insert(ctx, rec); err != nil {
		s.log.Error("metadata write failed after blob write, blob orphaned",
			"object_key", location, "file_id", id, "error", err)
		return nil, err
	}

	s.log.Info("file uploaded", "file_id", id, "orig_name", origName, "size", size, "by", acc.Username)
	return rec, nil
}

// List returns file metadata for any verified account, regardless of role.
func (s *FileService) List(ctx context.Context, acc *model.Account, limit int) ([]model.FileRecord, error) {
	if err := auth.RequireVerified(acc); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.files.ListAll(ctx, limit)
}

// RequestDownload is phase one of the secure download: a verified account
// asks for a file and receives a redemption URL carrying an encrypted
// capability bound to the file and the requesting identity.
func (s *FileService) RequestDownload(ctx context.Context, acc *model.Account, fileID uuid.UUID) (string, error) {
	if err := auth.RequireVerified(acc); err != nil {
		return "", err
	}

	rec, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", model.ErrNotFound
	}

	capability, err := s.caps.Issue(rec.ID, acc.ID, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to issue download capability: %w", err)
	}
	return s.baseURL + "/files/secure-download?token=" + url.QueryEscape(capability), nil
}

// Redeem is phase two: the capability alone authorizes the download, no
// session required. A missing blob behind a valid capability is a
// data-integrity fault and surfaces as ErrNotFound, distinct from the
// capability's own decode/decrypt/expired failures.
func (s *FileService) Redeem(ctx context.Context, capability string) (*model.FileRecord, io.ReadCloser, int64, error) {
	fileID, userID, err := s.caps.Redeem(capability, time.Now())
	if err != nil {
		return nil, nil, 0, err
	}

	rec, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, nil, 0, err
	}
	if rec == nil {
		return nil, nil, 0, model.ErrNotFound
	}

	body, size, err := s.blobs.Read(ctx, rec.ObjectKey)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.log.Error("blob missing for valid capability",
				"file_id", fileID, "object_key", rec.ObjectKey, "user_id", userID)
		}
		return nil, nil, 0, err
	}
	return rec, body, size, nil
}

// allowedExtension extracts and checks the file extension against the
// configured allow-list. An empty allow-list permits everything.
func (s *FileService) allowedExtension(name string) (string, error) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return "", fmt.Errorf("%w: file has no extension", model.ErrInvalidInput)
	}
	ext := strings.ToLower(name[idx+1:])
	if len(s.allowedExts) == 0 {
		return ext, nil
	}
	if _, ok := s.allowedExts[ext]; !ok {
		return "", fmt.Errorf("%w: file type %q not allowed", model.ErrInvalidInput, ext)
	}
	return ext, nil
}
