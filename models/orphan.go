package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrphanBlob is a blob store object that is no longer referenced by any
// file record. Entries are queued when a metadata write fails after a
// successful upload, or when a direct blob delete fails during file
// deletion, and are released by the background sweeper.
type OrphanBlob struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BlobID   string             `bson:"blob_id" json:"blob_id"`
	Reason   string             `bson:"reason" json:"reason"`
	QueuedAt time.Time          `bson:"queued_at" json:"queued_at"`
	Attempts int                `bson:"attempts" json:"attempts"`
}
