package services

import (
	"context"
	"fmt"
	"sharevault/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MetadataUpdate carries the owner-editable fields of a file record. Nil
// pointers mean "leave unchanged". PasswordHash follows Visibility: it is set
// when switching to password visibility and cleared when switching away.
type MetadataUpdate struct {
	Title        *string
	Description  *string
	GroupID      *string
	FolderID     *string
	Visibility   *models.Visibility
	PasswordHash *string
}

// FileStore is the persistent record store the file core's invariants are
// defined over. Insert must reject a second record with the same dedup key
// with ErrDuplicateKey; ReplaceVersioned must reject a stale current_version
// token with ErrVersionConflict.
type FileStore interface {
	Insert(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id string) (*models.File, error)
	FindByContent(ctx context.Context, contentHash string, size int64, mimeType string) (*models.File, error)
	FindByDedupKey(ctx context.Context, dedupKey string) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.File, error)
	ReplaceVersioned(ctx context.Context, file *models.File, expectedVersion int) error
	UpdateMetadata(ctx context.Context, id string, update MetadataUpdate) (*models.File, error)
	IncrementDownloads(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// MongoFileStore implements FileStore over a MongoDB collection.
type MongoFileStore struct {
	collection *mongo.Collection
}

func NewMongoFileStore(db *mongo.Database) *MongoFileStore {
	return &MongoFileStore{collection: db.Collection("files")}
}

// EnsureIndexes creates the unique index backing the creation-time dedup
// invariant, plus the lookup indexes the store queries by.
func (s *MongoFileStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dedup_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "content_hash", Value: 1},
				{Key: "size", Value: 1},
				{Key: "mime_type", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create file indexes: %w", err)
	}
	return nil
}

func (s *MongoFileStore) Insert(ctx context.Context, file *models.File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}

	_, err := s.collection.InsertOne(ctx, file)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}
	return nil
}

func (s *MongoFileStore) FindByID(ctx context.Context, id string) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFileNotFound
	}

	var file models.File
	err = s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, ErrFileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &file, nil
}

// FindByContent looks up a record by its current content triple. Dedup
// queries the live top-level fields; the unique constraint lives on the
// immutable dedup_key.
func (s *MongoFileStore) FindByContent(ctx context.Context, contentHash string, size int64, mimeType string) (*models.File, error) {
	var file models.File
	err := s.collection.FindOne(ctx, bson.M{
		"content_hash": contentHash,
		"size":         size,
		"mime_type":    mimeType,
	}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, ErrFileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &file, nil
}

// FindByDedupKey resolves a record by its immutable creation-time key. This
// is the lookup for a duplicate-key conflict: the winner's live triple may
// have moved on to a later version, but its dedup_key never changes.
func (s *MongoFileStore) FindByDedupKey(ctx context.Context, dedupKey string) (*models.File, error) {
	var file models.File
	err := s.collection.FindOne(ctx, bson.M{"dedup_key": dedupKey}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, ErrFileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &file, nil
}

func (s *MongoFileStore) ListByOwner(ctx context.Context, ownerID string) ([]models.File, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	return files, nil
}

// ReplaceVersioned writes the version-owned fields (the versions log, the
// current_version token and the top-level content mirror) only if the stored
// current_version still equals expectedVersion. Version append and restore
// are serialized per file through this token. Metadata fields are left
// untouched so a concurrent owner edit is never rolled back by a version
// write.
func (s *MongoFileStore) ReplaceVersioned(ctx context.Context, file *models.File, expectedVersion int) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{
		"_id":             file.ID,
		"current_version": expectedVersion,
	}, bson.M{"$set": bson.M{
		"versions":        file.Versions,
		"current_version": file.CurrentVersion,
		"content_hash":    file.ContentHash,
		"size":            file.Size,
		"mime_type":       file.MimeType,
		"media":           file.Media,
		"blob":            file.Blob,
		"updated_at":      file.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to replace file record: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a vanished record from a lost race.
		count, countErr := s.collection.CountDocuments(ctx, bson.M{"_id": file.ID})
		if countErr == nil && count == 0 {
			return ErrFileNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *MongoFileStore) UpdateMetadata(ctx context.Context, id string, update MetadataUpdate) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFileNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.GroupID != nil {
		set["group_id"] = *update.GroupID
	}
	if update.FolderID != nil {
		set["folder_id"] = *update.FolderID
	}
	if update.Visibility != nil {
		set["visibility"] = *update.Visibility
	}
	if update.PasswordHash != nil {
		if *update.PasswordHash == "" {
			unset["password_hash"] = ""
		} else {
			set["password_hash"] = *update.PasswordHash
		}
	}

	change := bson.M{"$set": set}
	if len(unset) > 0 {
		change["$unset"] = unset
	}

	var file models.File
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, change,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, ErrFileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to update file metadata: %w", err)
	}
	return &file, nil
}

// IncrementDownloads bumps the counter atomically at the storage layer so it
// survives multi-instance deployment.
func (s *MongoFileStore) IncrementDownloads(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrFileNotFound
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"download_count": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (s *MongoFileStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrFileNotFound
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrFileNotFound
	}
	return nil
}

var _ FileStore = (*MongoFileStore)(nil)
