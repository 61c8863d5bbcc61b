package event

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection("events"),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func (r *MongoRepo) Create(ctx context.Context, e *Event) error {
	result, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		return err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	e.MongoID = oid
	e.ID = oid.Hex()
	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var e Event
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	e.ID = e.MongoID.Hex()
	return &e, nil
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M) ([]*Event, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*Event, 0)
	for cursor.Next(ctx) {
		var e Event
		if err := cursor.Decode(&e); err != nil {
			continue
		}
		e.ID = e.MongoID.Hex()
		events = append(events, &e)
	}
	return events, cursor.Err()
}

func (r *MongoRepo) List(ctx context.Context, f Filter) ([]*Event, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	if f.Upcoming {
		filter["startsAt"] = bson.M{"$gte": time.Now().UTC()}
	}
	return r.find(ctx, filter)
}

func (r *MongoRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error) {
	return r.find(ctx, bson.M{"organizerId": organizerID})
}

func (r *MongoRepo) Update(ctx context.Context, e *Event) error {
	oid, err := objectID(e.ID)
	if err != nil {
		return err
	}

	// Seats may be sold between the caller's read and this write.
	filter := bson.M{
		"_id":   oid,
		"$expr": bson.M{"$lte": bson.A{"$ticketsSold", e.Capacity}},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"title":       e.Title,
		"description": e.Description,
		"category":    e.Category,
		"venue":       e.Venue,
		"startsAt":    e.StartsAt,
		"price":       e.Price,
		"capacity":    e.Capacity,
		"image":       e.Image,
		"updatedAt":   e.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if res.MatchedCount == 0 {
		current, getErr := r.GetByID(ctx, e.ID)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: capacity is below the %d tickets already sold", ErrValidation, current.TicketsSold)
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ReserveSeats takes qty tickets in one atomic update, so concurrent bookings can never oversell.
func (r *MongoRepo) ReserveSeats(ctx context.Context, id string, qty int) (*Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id": oid,
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$ticketsSold", qty}},
			"$capacity",
		}},
	}

	var e Event
	err = r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$inc": bson.M{"ticketsSold": qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrSoldOut
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	e.ID = e.MongoID.Hex()
	return &e, nil
}

func (r *MongoRepo) ReleaseSeats(ctx context.Context, id string, qty int) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "ticketsSold": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"ticketsSold": -qty}},
	)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

func (r *MongoRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}
