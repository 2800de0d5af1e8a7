package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityPassword Visibility = "password"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityPassword:
		return true
	}
	return false
}

// MediaCategory is a closed classification of a file's content type,
// resolved once at ingest from the declared MIME type.
type MediaCategory string

const (
	MediaImage    MediaCategory = "image"
	MediaVideo    MediaCategory = "video"
	MediaAudio    MediaCategory = "audio"
	MediaDocument MediaCategory = "document"
	MediaArchive  MediaCategory = "archive"
	MediaOther    MediaCategory = "other"
)

func ResolveMediaCategory(mimeType string) MediaCategory {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case strings.HasPrefix(mt, "image/"):
		return MediaImage
	case strings.HasPrefix(mt, "video/"):
		return MediaVideo
	case strings.HasPrefix(mt, "audio/"):
		return MediaAudio
	}

	switch mt {
	case "application/pdf", "text/plain", "text/markdown", "text/csv",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return MediaDocument
	case "application/zip", "application/gzip", "application/x-tar",
		"application/x-7z-compressed", "application/x-rar-compressed":
		return MediaArchive
	}

	return MediaOther
}

// BlobRef points at one stored object in the blob store: the store's
// opaque identifier plus the retrieval URL issued when it was written.
type BlobRef struct {
	BlobID string `bson:"blob_id" json:"blob_id"`
	URL    string `bson:"url" json:"url"`
}

// File is one logical file as currently known to the system. The top-level
// ContentHash/Size/MimeType/Blob always mirror the version whose number is
// CurrentVersion. Versions is an append-only log of uploads.
type File struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	OwnerID      string             `bson:"owner_id" json:"owner_id"`
	GroupID      *string            `bson:"group_id,omitempty" json:"group_id,omitempty"`
	FolderID     *string            `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	Visibility   Visibility         `bson:"visibility" json:"visibility"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`

	ContentHash string        `bson:"content_hash" json:"content_hash"`
	Size        int64         `bson:"size" json:"size"`
	MimeType    string        `bson:"mime_type" json:"mime_type"`
	Media       MediaCategory `bson:"media" json:"media"`
	Blob        BlobRef       `bson:"blob" json:"blob"`

	// DedupKey is the (hash, size, mimeType) triple captured at creation.
	// It is immutable and carries the unique index; version updates never
	// touch it.
	DedupKey string `bson:"dedup_key" json:"-"`

	DownloadCount  int64         `bson:"download_count" json:"download_count"`
	CurrentVersion int           `bson:"current_version" json:"current_version"`
	Versions       []FileVersion `bson:"versions" json:"versions"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type FileVersion struct {
	VersionNumber int       `bson:"version_number" json:"version_number"`
	UploadedAt    time.Time `bson:"uploaded_at" json:"uploaded_at"`
	UploadedBy    string    `bson:"uploaded_by" json:"uploaded_by"`
	Blob          BlobRef   `bson:"blob" json:"blob"`
	ContentHash   string    `bson:"content_hash" json:"content_hash"`
	Size          int64     `bson:"size" json:"size"`
	MimeType      string    `bson:"mime_type" json:"mime_type"`
}

// DedupKey builds the immutable creation-time dedup key for a content triple.
func DedupKey(contentHash string, size int64, mimeType string) string {
	return fmt.Sprintf("%s:%d:%s", contentHash, size, mimeType)
}

// Version returns the version record with the given number, or nil.
func (f *File) Version(number int) *FileVersion {
	for i := range f.Versions {
		if f.Versions[i].VersionNumber == number {
			return &f.Versions[i]
		}
	}
	return nil
}

// BlobIDs returns the distinct blob identifiers referenced by any version.
func (f *File) BlobIDs() []string {
	seen := make(map[string]bool, len(f.Versions))
	var ids []string
	for _, v := range f.Versions {
		if v.Blob.BlobID != "" && !seen[v.Blob.BlobID] {
			seen[v.Blob.BlobID] = true
			ids = append(ids, v.Blob.BlobID)
		}
	}
	return ids
}
