package services

import (
	"context"
	"log"
	"sharevault/models"
	"sharevault/utils"
)

// FileService orchestrates the upload, read, download, edit, restore and
// delete paths over the dedup engine, the access gate, the record store and
// the blob gateway.
type FileService struct {
	store   FileStore
	blobs   BlobGateway
	engine  *DedupEngine
	gate    *AccessGate
	orphans OrphanQueue
}

func NewFileService(store FileStore, blobs BlobGateway, gate *AccessGate, orphans OrphanQueue) *FileService {
	return &FileService{
		store:   store,
		blobs:   blobs,
		engine:  NewDedupEngine(store, blobs, orphans),
		gate:    gate,
		orphans: orphans,
	}
}

type UploadRequest struct {
	Data         []byte
	MimeType     string
	OwnerID      string
	TargetFileID string

	Title       string
	Description string
	GroupID     *string
	FolderID    *string
	Visibility  models.Visibility
	Password    string
}

// Upload validates the request, hashes a password when the file is
// password-gated, and hands the decision to the dedup engine. Adding a
// version to an existing file is owner-only.
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (*IngestResult, error) {
	if req.TargetFileID == "" {
		if err := utils.ValidateTitle(req.Title); err != nil {
			return nil, err
		}
		if err := utils.ValidateDescription(req.Description); err != nil {
			return nil, err
		}
		if err := utils.ValidateVisibility(req.Visibility, req.Password); err != nil {
			return nil, err
		}
	}
	if len(req.Data) == 0 {
		return nil, utils.NewValidationError("file content is empty")
	}

	var passwordHash string
	if req.TargetFileID == "" && req.Visibility == models.VisibilityPassword {
		hash, err := s.gate.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	if req.TargetFileID != "" {
		target, err := s.store.FindByID(ctx, req.TargetFileID)
		if err != nil {
			return nil, err
		}
		if target.OwnerID != req.OwnerID {
			return nil, ErrForbidden
		}
	}

	return s.engine.Ingest(ctx, IngestRequest{
		Data:         req.Data,
		MimeType:     req.MimeType,
		OwnerID:      req.OwnerID,
		TargetFileID: req.TargetFileID,
		Title:        req.Title,
		Description:  req.Description,
		GroupID:      req.GroupID,
		FolderID:     req.FolderID,
		Visibility:   req.Visibility,
		PasswordHash: passwordHash,
	})
}

// Get returns the record if the access gate allows the requester through.
func (s *FileService) Get(ctx context.Context, fileID, requesterID, password string) (*models.File, error) {
	file, err := s.store.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(file, requesterID, password); err != nil {
		return nil, err
	}
	return file, nil
}

// Download authorizes the requester, resolves a fresh retrieval URL for the
// current version and then bumps the counter. The increment is best-effort
// telemetry: once the URL is resolved, an increment failure is logged and the
// URL is still returned. A denied request never increments.
func (s *FileService) Download(ctx context.Context, fileID, requesterID, password string) (url string, title string, err error) {
	file, err := s.store.FindByID(ctx, fileID)
	if err != nil {
		return "", "", err
	}
	if err := s.gate.Authorize(file, requesterID, password); err != nil {
		return "", "", err
	}

	url, err = s.blobs.DownloadURL(ctx, file.Blob.BlobID)
	if err != nil {
		return "", "", err
	}

	if err := s.store.IncrementDownloads(ctx, fileID); err != nil {
		log.Printf("Failed to increment download count for file %s: %v", fileID, err)
	}

	return url, file.Title, nil
}

// UpdateMetadata applies owner-only edits. Visibility transitions keep the
// password hash in step: switching to password requires a password and stores
// its hash; switching away clears it.
func (s *FileService) UpdateMetadata(ctx context.Context, fileID, requesterID string, update MetadataUpdate, password string) (*models.File, error) {
	file, err := s.store.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != requesterID {
		return nil, ErrForbidden
	}

	if update.Title != nil {
		if err := utils.ValidateTitle(*update.Title); err != nil {
			return nil, err
		}
	}
	if update.Description != nil {
		if err := utils.ValidateDescription(*update.Description); err != nil {
			return nil, err
		}
	}

	if update.Visibility != nil {
		if !update.Visibility.Valid() {
			return nil, utils.NewValidationError("invalid visibility")
		}
		switch *update.Visibility {
		case models.VisibilityPassword:
			if password == "" && file.PasswordHash == "" {
				return nil, utils.NewValidationError("password is required for password visibility")
			}
			if password != "" {
				hash, err := s.gate.HashPassword(password)
				if err != nil {
					return nil, err
				}
				update.PasswordHash = &hash
			}
		default:
			empty := ""
			update.PasswordHash = &empty
		}
	}

	return s.store.UpdateMetadata(ctx, fileID, update)
}

// RestoreVersion promotes a prior upload back to current, owner-only.
func (s *FileService) RestoreVersion(ctx context.Context, fileID string, versionNumber int, requesterID string) (*models.File, error) {
	return s.engine.RestoreVersion(ctx, fileID, versionNumber, requesterID)
}

// ListVersions returns the append-only upload history, owner-only.
func (s *FileService) ListVersions(ctx context.Context, fileID, requesterID string) ([]models.FileVersion, error) {
	file, err := s.store.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != requesterID {
		return nil, ErrForbidden
	}
	return file.Versions, nil
}

// ListByOwner returns the requester's own files.
func (s *FileService) ListByOwner(ctx context.Context, ownerID string) ([]models.File, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Delete removes the record and releases every blob the record exclusively
// owns (all versions). The record goes first so no reader can resolve a URL
// to a half-deleted file; blob deletes that fail are queued for the sweeper.
func (s *FileService) Delete(ctx context.Context, fileID, requesterID string) error {
	file, err := s.store.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.OwnerID != requesterID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, fileID); err != nil {
		return err
	}

	for _, blobID := range file.BlobIDs() {
		if err := s.blobs.Delete(ctx, blobID); err != nil {
			log.Printf("Failed to delete blob %s for file %s: %v", blobID, fileID, err)
			if s.orphans != nil {
				s.orphans.Queue(ctx, blobID, "file deletion")
			}
		}
	}

	return nil
}
