package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fieldtel/internal/constants"
	"fieldtel/pkg/telemetry"
)

type MongoDBRepository struct {
	collection *mongo.Collection
}

func NewMongoDBRepository(db *mongo.Database) *MongoDBRepository {
	return &MongoDBRepository{
		collection: db.Collection(constants.MessagesCollection),
	}
}

func (r *MongoDBRepository) Put(ctx context.Context, msg *telemetry.Message) error {
	_, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: session %s sequence %d", ErrDuplicateSequence, msg.SessionGUID, msg.SequenceNumber)
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) GetByID(ctx context.Context, id string) (*telemetry.Message, error) {
	var msg telemetry.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return &msg, nil
}

func (r *MongoDBRepository) ListBySession(ctx context.Context, sessionGUID string) ([]telemetry.Message, error) {
	filter := bson.M{"session_guid": sessionGUID}
	opts := options.Find().SetSort(bson.D{{Key: "sequence_number", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find session messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []telemetry.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode session messages: %w", err)
	}

	return messages, nil
}
