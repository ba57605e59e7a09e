package model

import (
	"time"

	"github.com/google/uuid"
)

// FileRecord is the metadata row for one uploaded blob. Records are created
// by uploader accounts and are immutable afterwards. ObjectKey is the blob
// store location and is never exposed to clients directly; clients only ever
// see it through a redeemed download capability.
type FileRecord struct {
	ID          uuid.UUID
	OrigName    string
	StoredName  string
	ContentType string
	SizeBytes   int64
	ObjectKey   string
	UploadedBy  uuid.UUID
	UploadedAt  time.Time
}
