package services

import (
	"context"
	"fmt"
	"log"
	"sharevault/models"
	"time"
)

// OrphanQueue records blob store objects left unreferenced by a failed
// metadata write so the background sweeper can release them. Queueing is
// best-effort; failures are logged and never block the caller's response.
type OrphanQueue interface {
	Queue(ctx context.Context, blobID, reason string)
}

type IngestOutcomeKind string

const (
	OutcomeCreated        IngestOutcomeKind = "created"
	OutcomeDuplicateFound IngestOutcomeKind = "duplicate_found"
	OutcomeVersionAdded   IngestOutcomeKind = "version_added"
)

// IngestRequest carries one upload decision's inputs. TargetFileID empty
// means "new upload" (dedup applies); non-empty means "add a version to an
// existing file" (dedup intentionally bypassed, ownership checked by the
// caller). PasswordHash arrives already hashed.
type IngestRequest struct {
	Data         []byte
	MimeType     string
	OwnerID      string
	TargetFileID string

	Title        string
	Description  string
	GroupID      *string
	FolderID     *string
	Visibility   models.Visibility
	PasswordHash string
}

type IngestResult struct {
	Outcome    IngestOutcomeKind
	File       *models.File
	NewVersion int
}

const versionedWriteRetries = 3

// DedupEngine decides the fate of uploaded bytes: brand-new file, duplicate
// of existing content, or a new version of an explicit target.
type DedupEngine struct {
	store   FileStore
	blobs   BlobGateway
	orphans OrphanQueue
}

func NewDedupEngine(store FileStore, blobs BlobGateway, orphans OrphanQueue) *DedupEngine {
	return &DedupEngine{store: store, blobs: blobs, orphans: orphans}
}

func (e *DedupEngine) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	digest := HashContent(req.Data)
	size := int64(len(req.Data))

	if req.TargetFileID != "" {
		return e.appendVersion(ctx, req, digest, size)
	}
	return e.ingestNew(ctx, req, digest, size)
}

func (e *DedupEngine) ingestNew(ctx context.Context, req IngestRequest, digest string, size int64) (*IngestResult, error) {
	existing, err := e.store.FindByContent(ctx, digest, size, req.MimeType)
	if err == nil {
		return &IngestResult{Outcome: OutcomeDuplicateFound, File: existing}, nil
	}
	if err != ErrFileNotFound {
		return nil, err
	}

	blob, err := e.blobs.Upload(ctx, req.Data, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("blob upload failed: %w", err)
	}

	now := time.Now().UTC()
	file := &models.File{
		Title:          req.Title,
		Description:    req.Description,
		OwnerID:        req.OwnerID,
		GroupID:        req.GroupID,
		FolderID:       req.FolderID,
		Visibility:     req.Visibility,
		PasswordHash:   req.PasswordHash,
		ContentHash:    digest,
		Size:           size,
		MimeType:       req.MimeType,
		Media:          models.ResolveMediaCategory(req.MimeType),
		Blob:           blob,
		DedupKey:       models.DedupKey(digest, size, req.MimeType),
		CurrentVersion: 1,
		Versions: []models.FileVersion{{
			VersionNumber: 1,
			UploadedAt:    now,
			UploadedBy:    req.OwnerID,
			Blob:          blob,
			ContentHash:   digest,
			Size:          size,
			MimeType:      req.MimeType,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = e.store.Insert(ctx, file)
	if err == ErrDuplicateKey {
		// The unique constraint says a record with this creation-time key
		// exists. Its live triple may have moved on to a later version, so
		// the winner is resolved by dedup key, not by live content. The blob
		// we just wrote is unreferenced; queue it and hand back the winner.
		e.releaseBlob(ctx, blob.BlobID, "lost dedup race")

		winner, lookupErr := e.store.FindByDedupKey(ctx, file.DedupKey)
		if lookupErr != nil {
			return nil, fmt.Errorf("dedup conflict but winning record not found: %w", lookupErr)
		}
		return &IngestResult{Outcome: OutcomeDuplicateFound, File: winner}, nil
	}
	if err != nil {
		e.releaseBlob(ctx, blob.BlobID, "metadata write failed after upload")
		return nil, err
	}

	return &IngestResult{Outcome: OutcomeCreated, File: file}, nil
}

// appendVersion uploads unconditionally (an explicit user action on an
// existing file skips dedup) and appends under the current_version token,
// retrying when a concurrent writer got there first.
func (e *DedupEngine) appendVersion(ctx context.Context, req IngestRequest, digest string, size int64) (*IngestResult, error) {
	file, err := e.store.FindByID(ctx, req.TargetFileID)
	if err != nil {
		return nil, err
	}

	blob, err := e.blobs.Upload(ctx, req.Data, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("blob upload failed: %w", err)
	}

	for attempt := 0; attempt < versionedWriteRetries; attempt++ {
		expected := file.CurrentVersion
		next := nextVersionNumber(file)
		now := time.Now().UTC()

		updated := *file
		updated.Versions = append(append([]models.FileVersion{}, file.Versions...), models.FileVersion{
			VersionNumber: next,
			UploadedAt:    now,
			UploadedBy:    req.OwnerID,
			Blob:          blob,
			ContentHash:   digest,
			Size:          size,
			MimeType:      req.MimeType,
		})
		updated.CurrentVersion = next
		updated.ContentHash = digest
		updated.Size = size
		updated.MimeType = req.MimeType
		updated.Media = models.ResolveMediaCategory(req.MimeType)
		updated.Blob = blob
		updated.UpdatedAt = now

		err = e.store.ReplaceVersioned(ctx, &updated, expected)
		if err == nil {
			return &IngestResult{Outcome: OutcomeVersionAdded, File: &updated, NewVersion: next}, nil
		}
		if err != ErrVersionConflict {
			e.releaseBlob(ctx, blob.BlobID, "version append failed after upload")
			return nil, err
		}

		// Loser of a concurrent append: refresh and recompute.
		file, err = e.store.FindByID(ctx, req.TargetFileID)
		if err != nil {
			e.releaseBlob(ctx, blob.BlobID, "target vanished during version append")
			return nil, err
		}
	}

	e.releaseBlob(ctx, blob.BlobID, "version append retries exhausted")
	return nil, ErrVersionConflict
}

// RestoreVersion promotes an existing version back to current. The versions
// list is a log of uploads: nothing is appended, reordered or deleted.
func (e *DedupEngine) RestoreVersion(ctx context.Context, fileID string, versionNumber int, requesterID string) (*models.File, error) {
	for attempt := 0; attempt < versionedWriteRetries; attempt++ {
		file, err := e.store.FindByID(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if file.OwnerID != requesterID {
			return nil, ErrForbidden
		}

		version := file.Version(versionNumber)
		if version == nil {
			return nil, ErrVersionNotFound
		}

		expected := file.CurrentVersion
		updated := *file
		updated.CurrentVersion = version.VersionNumber
		updated.ContentHash = version.ContentHash
		updated.Size = version.Size
		updated.MimeType = version.MimeType
		updated.Media = models.ResolveMediaCategory(version.MimeType)
		updated.Blob = version.Blob
		updated.UpdatedAt = time.Now().UTC()

		err = e.store.ReplaceVersioned(ctx, &updated, expected)
		if err == nil {
			return &updated, nil
		}
		if err != ErrVersionConflict {
			return nil, err
		}
	}

	return nil, ErrVersionConflict
}

func nextVersionNumber(file *models.File) int {
	next := file.CurrentVersion + 1
	for _, v := range file.Versions {
		if v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}
	return next
}

func (e *DedupEngine) releaseBlob(ctx context.Context, blobID, reason string) {
	if err := e.blobs.Delete(ctx, blobID); err == nil {
		return
	}
	if e.orphans != nil {
		e.orphans.Queue(ctx, blobID, reason)
		return
	}
	log.Printf("orphaned blob %s (%s) could not be released", blobID, reason)
}
