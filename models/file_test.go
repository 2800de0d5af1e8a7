package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMediaCategory(t *testing.T) {
	tests := []struct {
		mimeType string
		want     MediaCategory
	}{
		{"image/png", MediaImage},
		{"image/jpeg", MediaImage},
		{"IMAGE/PNG", MediaImage},
		{"video/mp4", MediaVideo},
		{"audio/mpeg", MediaAudio},
		{"application/pdf", MediaDocument},
		{"text/plain", MediaDocument},
		{"text/plain; charset=utf-8", MediaDocument},
		{"application/zip", MediaArchive},
		{"application/octet-stream", MediaOther},
		{"", MediaOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveMediaCategory(tt.mimeType), "mime type %q", tt.mimeType)
	}
}

func TestVisibilityValid(t *testing.T) {
	assert.True(t, VisibilityPublic.Valid())
	assert.True(t, VisibilityPrivate.Valid())
	assert.True(t, VisibilityPassword.Valid())
	assert.False(t, Visibility("unlisted").Valid())
	assert.False(t, Visibility("").Valid())
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "abc123:42:text/plain", DedupKey("abc123", 42, "text/plain"))
}

func TestFileVersionLookup(t *testing.T) {
	file := &File{Versions: []FileVersion{
		{VersionNumber: 1, Blob: BlobRef{BlobID: "blob-a"}},
		{VersionNumber: 2, Blob: BlobRef{BlobID: "blob-b"}},
	}}

	v := file.Version(2)
	assert.NotNil(t, v)
	assert.Equal(t, "blob-b", v.Blob.BlobID)
	assert.Nil(t, file.Version(3))
}

func TestFileBlobIDsDeduplicates(t *testing.T) {
	file := &File{Versions: []FileVersion{
		{VersionNumber: 1, Blob: BlobRef{BlobID: "blob-a"}},
		{VersionNumber: 2, Blob: BlobRef{BlobID: "blob-b"}},
		{VersionNumber: 3, Blob: BlobRef{BlobID: "blob-a"}},
	}}

	assert.ElementsMatch(t, []string{"blob-a", "blob-b"}, file.BlobIDs())
}
