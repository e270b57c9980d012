package importer

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sink stores converted documents, replacing any with the same id.
type Sink interface {
	Upsert(ctx context.Context, collection string, docs []bson.M) error
}

type MongoSink struct {
	db *mongo.Database
}

var _ Sink = (*MongoSink)(nil)

func NewMongoSink(db *mongo.Database) *MongoSink {
	return &MongoSink{db: db}
}

// Upsert writes one unordered bulk request so a bad document does not stop
// the rest of the batch.
func (s *MongoSink) Upsert(ctx context.Context, collection string, docs []bson.M) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc["_id"]}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	_, err := s.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}
