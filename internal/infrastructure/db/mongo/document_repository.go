package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securebank/portal-api/internal/core/domain"
)

const collectionDocuments = "documents"

type DocumentRepository struct {
	col *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{col: db.Collection(collectionDocuments)}
}

type mongoDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Name       string             `bson:"name"`
	Type       string             `bson:"type"`
	Format     string             `bson:"format"`
	SizeKB     int64              `bson:"size_kb"`
	UploadedAt time.Time          `bson:"uploaded_at"`
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cur.Close(ctx)

	var documents []*domain.Document
	for cur.Next(ctx) {
		var md mongoDocument
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		documents = append(documents, &domain.Document{
			ID:         md.ID.Hex(),
			UserID:     md.UserID,
			Name:       md.Name,
			Type:       md.Type,
			Format:     md.Format,
			SizeKB:     md.SizeKB,
			UploadedAt: md.UploadedAt,
		})
	}
	return documents, cur.Err()
}
