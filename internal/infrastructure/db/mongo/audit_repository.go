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

const collectionSecurityEvents = "security_events"

// AuditRepository persists the security audit trail.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionSecurityEvents)}
}

type mongoEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id,omitempty"`
	EventType   string             `bson:"event_type"`
	Description string             `bson:"description"`
	IPAddress   string             `bson:"ip_address,omitempty"`
	UserAgent   string             `bson:"user_agent,omitempty"`
	RiskLevel   string             `bson:"risk_level"`
	Timestamp   time.Time          `bson:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoEvent{
		ID:          primitive.NewObjectID(),
		UserID:      event.UserID,
		EventType:   event.EventType,
		Description: event.Description,
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
		RiskLevel:   event.RiskLevel,
		Timestamp:   event.Timestamp.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	event.ID = doc.ID.Hex()
	return nil
}

func (r *AuditRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.SecurityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	defer cur.Close(ctx)

	var events []*domain.SecurityEvent
	for cur.Next(ctx) {
		var me mongoEvent
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode security event: %w", err)
		}
		events = append(events, &domain.SecurityEvent{
			ID:          me.ID.Hex(),
			UserID:      me.UserID,
			EventType:   me.EventType,
			Description: me.Description,
			IPAddress:   me.IPAddress,
			UserAgent:   me.UserAgent,
			RiskLevel:   me.RiskLevel,
			Timestamp:   me.Timestamp,
		})
	}
	return events, cur.Err()
}

// EnsureIndexes creates the index backing per-user event queries.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
