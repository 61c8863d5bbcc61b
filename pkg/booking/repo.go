package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection("bookings"),
	}
}

func (r *MongoRepo) Create(ctx context.Context, b *Booking) error {
	if _, err := r.collection.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &b, nil
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M) ([]*Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoRepo) ListByEvent(ctx context.Context, eventID string) ([]*Booking, error) {
	return r.find(ctx, bson.M{"eventId": eventID})
}

func (r *MongoRepo) Transition(ctx context.Context, id string, from, to Status, paymentIntentID string) (*Booking, error) {
	set := bson.M{"status": to, "updatedAt": time.Now().UTC()}
	if paymentIntentID != "" {
		set["paymentIntentId"] = paymentIntentID
	}

	var b Booking
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &b, nil
}

func (r *MongoRepo) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paymentIntentId": paymentIntentID, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to attach payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *MongoRepo) ListPendingBefore(ctx context.Context, before time.Time) ([]*Booking, error) {
	return r.find(ctx, bson.M{"status": StatusPending, "createdAt": bson.M{"$lt": before}})
}

func (r *MongoRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": bson.M{"$ne": StatusCancelled}})
}
