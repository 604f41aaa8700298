package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

const collectionPayments = "payments"

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

type mongoPayment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	PayeeName    string             `bson:"payee_name"`
	PayeeAccount string             `bson:"payee_account"`
	Swift        string             `bson:"swift"`
	Currency     string             `bson:"currency"`
	Amount       float64            `bson:"amount"`
	Reference    string             `bson:"reference,omitempty"`
	Status       string             `bson:"status"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (mp *mongoPayment) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:           mp.ID.Hex(),
		UserID:       mp.UserID,
		PayeeName:    mp.PayeeName,
		PayeeAccount: mp.PayeeAccount,
		Swift:        mp.Swift,
		Currency:     mp.Currency,
		Amount:       mp.Amount,
		Reference:    mp.Reference,
		Status:       domain.PaymentStatus(mp.Status),
		CreatedAt:    unixToTime(mp.CreatedAt),
		UpdatedAt:    unixToTime(mp.UpdatedAt),
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPayment{
		ID:           primitive.NewObjectID(),
		UserID:       p.UserID,
		PayeeName:    p.PayeeName,
		PayeeAccount: p.PayeeAccount,
		Swift:        p.Swift,
		Currency:     p.Currency,
		Amount:       p.Amount,
		Reference:    p.Reference,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt.Unix(),
		UpdatedAt:    p.UpdatedAt.Unix(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	created := *p
	created.ID = doc.ID.Hex()
	return &created, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPaymentNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PaymentRepository) FindByIDForUser(ctx context.Context, id, userID string) (*domain.Payment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPaymentNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "user_id": userID})
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPayment
	if err := r.col.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.Payment, error) {
	return r.list(ctx, bson.M{"user_id": userID}, limit)
}

func (r *PaymentRepository) ListByStatus(ctx context.Context, statuses []domain.PaymentStatus, limit int64) ([]*domain.Payment, error) {
	filter := bson.M{}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		filter["status"] = bson.M{"$in": values}
	}
	return r.list(ctx, filter, limit)
}

func (r *PaymentRepository) list(ctx context.Context, filter bson.M, limit int64) ([]*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer cur.Close(ctx)

	var payments []*domain.Payment
	for cur.Next(ctx) {
		var mp mongoPayment
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode payment: %w", err)
		}
		payments = append(payments, mp.toDomain())
	}
	return payments, cur.Err()
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPaymentNotFound
	}

	var mp mongoPayment
	err = r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().Unix()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *PaymentRepository) Counts(ctx context.Context) (*ports.PaymentCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate payment counts: %w", err)
	}
	defer cur.Close(ctx)

	counts := &ports.PaymentCounts{}
	for cur.Next(ctx) {
		var row struct {
			Status string  `bson:"_id"`
			Count  int64   `bson:"count"`
			Amount float64 `bson:"amount"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode payment counts: %w", err)
		}

		counts.Total += row.Count
		counts.TotalAmount += row.Amount
		switch domain.PaymentStatus(row.Status) {
		case domain.StatusPending:
			counts.Pending = row.Count
			counts.PendingAmount = row.Amount
		case domain.StatusVerified:
			counts.Verified = row.Count
		case domain.StatusSent:
			counts.Sent = row.Count
		}
	}
	return counts, cur.Err()
}

func (r *PaymentRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since.Unix()}})
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}

func (r *PaymentRepository) CountByUser(ctx context.Context, userID string, status domain.PaymentStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = string(status)
	}

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count user payments: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the indexes backing list and ownership queries.
func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
