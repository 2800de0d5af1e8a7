package services

import (
	"context"
	"log"
	"sharevault/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxSweepAttempts = 5

// OrphanService queues unreferenced blob store objects and releases them in
// the background sweep.
type OrphanService struct {
	collection *mongo.Collection
	blobs      BlobGateway
}

func NewOrphanService(db *mongo.Database, blobs BlobGateway) *OrphanService {
	return &OrphanService{
		collection: db.Collection("orphan_blobs"),
		blobs:      blobs,
	}
}

// Queue records an unreferenced blob for later release. Best-effort: a
// failure here is logged, never surfaced to the caller.
func (s *OrphanService) Queue(ctx context.Context, blobID, reason string) {
	orphan := models.OrphanBlob{
		ID:       primitive.NewObjectID(),
		BlobID:   blobID,
		Reason:   reason,
		QueuedAt: time.Now().UTC(),
	}
	if _, err := s.collection.InsertOne(ctx, orphan); err != nil {
		log.Printf("Failed to queue orphaned blob %s (%s): %v", blobID, reason, err)
	}
}

// Sweep deletes every queued blob from the blob store and drops the queue
// entry on success. Entries that keep failing past maxSweepAttempts are
// dropped and logged for manual cleanup.
func (s *OrphanService) Sweep(ctx context.Context) (released int, err error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var orphans []models.OrphanBlob
	if err = cursor.All(ctx, &orphans); err != nil {
		return 0, err
	}

	for _, orphan := range orphans {
		if err := s.blobs.Delete(ctx, orphan.BlobID); err != nil {
			if orphan.Attempts+1 >= maxSweepAttempts {
				log.Printf("Giving up on orphaned blob %s after %d attempts: %v",
					orphan.BlobID, orphan.Attempts+1, err)
				s.collection.DeleteOne(ctx, bson.M{"_id": orphan.ID})
				continue
			}
			s.collection.UpdateOne(ctx, bson.M{"_id": orphan.ID},
				bson.M{"$inc": bson.M{"attempts": 1}})
			continue
		}

		if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": orphan.ID}); err != nil {
			log.Printf("Released blob %s but failed to drop queue entry: %v", orphan.BlobID, err)
			continue
		}
		released++
	}

	return released, nil
}

var _ OrphanQueue = (*OrphanService)(nil)
