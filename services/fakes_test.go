package services

import (
	"context"
	"errors"
	"fmt"
	"sharevault/models"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memFileStore is an in-memory FileStore with the same contract as the Mongo
// implementation: unique dedup_key on insert, current_version token on
// replace.
type memFileStore struct {
	mu         sync.Mutex
	files      map[string]*models.File
	failInsert error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string]*models.File)}
}

func copyFile(f *models.File) *models.File {
	c := *f
	c.Versions = append([]models.FileVersion{}, f.Versions...)
	return &c
}

func (s *memFileStore) Insert(ctx context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failInsert != nil {
		return s.failInsert
	}

	for _, existing := range s.files {
		if existing.DedupKey == file.DedupKey {
			return ErrDuplicateKey
		}
	}

	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	s.files[file.ID.Hex()] = copyFile(file)
	return nil
}

func (s *memFileStore) FindByID(ctx context.Context, id string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return copyFile(file), nil
}

func (s *memFileStore) FindByContent(ctx context.Context, contentHash string, size int64, mimeType string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.files {
		if file.ContentHash == contentHash && file.Size == size && file.MimeType == mimeType {
			return copyFile(file), nil
		}
	}
	return nil, ErrFileNotFound
}

func (s *memFileStore) FindByDedupKey(ctx context.Context, dedupKey string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.files {
		if file.DedupKey == dedupKey {
			return copyFile(file), nil
		}
	}
	return nil, ErrFileNotFound
}

func (s *memFileStore) ListByOwner(ctx context.Context, ownerID string) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []models.File
	for _, file := range s.files {
		if file.OwnerID == ownerID {
			files = append(files, *copyFile(file))
		}
	}
	return files, nil
}

func (s *memFileStore) ReplaceVersioned(ctx context.Context, file *models.File, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.files[file.ID.Hex()]
	if !ok {
		return ErrFileNotFound
	}
	if existing.CurrentVersion != expectedVersion {
		return ErrVersionConflict
	}

	// Scoped to the version-owned fields, like the Mongo implementation:
	// metadata committed after the caller's read must survive.
	existing.Versions = append([]models.FileVersion{}, file.Versions...)
	existing.CurrentVersion = file.CurrentVersion
	existing.ContentHash = file.ContentHash
	existing.Size = file.Size
	existing.MimeType = file.MimeType
	existing.Media = file.Media
	existing.Blob = file.Blob
	existing.UpdatedAt = file.UpdatedAt
	return nil
}

func (s *memFileStore) UpdateMetadata(ctx context.Context, id string, update MetadataUpdate) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}

	if update.Title != nil {
		file.Title = *update.Title
	}
	if update.Description != nil {
		file.Description = *update.Description
	}
	if update.GroupID != nil {
		file.GroupID = update.GroupID
	}
	if update.FolderID != nil {
		file.FolderID = update.FolderID
	}
	if update.Visibility != nil {
		file.Visibility = *update.Visibility
	}
	if update.PasswordHash != nil {
		file.PasswordHash = *update.PasswordHash
	}
	file.UpdatedAt = time.Now().UTC()

	return copyFile(file), nil
}

func (s *memFileStore) IncrementDownloads(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return ErrFileNotFound
	}
	file.DownloadCount++
	return nil
}

func (s *memFileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *memFileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

var _ FileStore = (*memFileStore)(nil)

// memBlobGateway records uploads and deletes instead of talking to B2.
type memBlobGateway struct {
	mu         sync.Mutex
	seq        int
	objects    map[string][]byte
	deleted    []string
	failUpload error
	failDelete error
}

func newMemBlobGateway() *memBlobGateway {
	return &memBlobGateway{objects: make(map[string][]byte)}
}

func (g *memBlobGateway) Upload(ctx context.Context, data []byte, mimeType string) (models.BlobRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failUpload != nil {
		return models.BlobRef{}, g.failUpload
	}

	g.seq++
	blobID := fmt.Sprintf("content/blob-%d", g.seq)
	g.objects[blobID] = append([]byte{}, data...)
	return models.BlobRef{BlobID: blobID, URL: "https://blobs.test/" + blobID}, nil
}

func (g *memBlobGateway) DownloadURL(ctx context.Context, blobID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.objects[blobID]; !ok {
		return "", errors.New("object not found")
	}
	return "https://blobs.test/signed/" + blobID, nil
}

func (g *memBlobGateway) Delete(ctx context.Context, blobID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failDelete != nil {
		return g.failDelete
	}
	delete(g.objects, blobID)
	g.deleted = append(g.deleted, blobID)
	return nil
}

func (g *memBlobGateway) uploadCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

func (g *memBlobGateway) liveObjects() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects)
}

var _ BlobGateway = (*memBlobGateway)(nil)

// memOrphanQueue collects queued blob IDs.
type memOrphanQueue struct {
	mu      sync.Mutex
	blobIDs []string
}

func (q *memOrphanQueue) Queue(ctx context.Context, blobID, reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.blobIDs = append(q.blobIDs, blobID)
}

var _ OrphanQueue = (*memOrphanQueue)(nil)
