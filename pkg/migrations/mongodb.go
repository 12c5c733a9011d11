package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fieldtel/internal/constants"
)

// EnsureMessageIndexes creates the indexes the message store relies on. The
// unique compound index on (session_guid, sequence_number) is what makes the
// duplicate check an atomic check-and-insert rather than a read-then-write.
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(constants.MessagesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_guid", Value: 1},
				{Key: "sequence_number", Value: 1},
			},
			Options: options.Index().
				SetName("uidx_messages_session_sequence").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_guid", Value: 1}},
			Options: options.Index().SetName("idx_messages_session_guid"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
