package mongodb

import (
	"context"

	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/domain/repository"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryRepository stores submitted quizzes in quiz_history.
type MongoHistoryRepository struct {
	history *mongo.Collection
}

var _ repository.HistoryRepository = (*MongoHistoryRepository)(nil)

func NewMongoHistoryRepository(ctx context.Context, db *mongo.Database) (*MongoHistoryRepository, error) {
	repo := &MongoHistoryRepository{history: db.Collection(database.CollectionQuizHistory)}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "program", Value: 1},
			{Key: "course", Value: 1},
			{Key: "date", Value: -1},
		}},
	}
	if _, err := repo.history.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoHistoryRepository) Create(ctx context.Context, result *model.QuizResult) error {
	_, err := r.history.InsertOne(ctx, result)
	return err
}

func (r *MongoHistoryRepository) ListByUser(ctx context.Context, uid string) ([]*model.QuizResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "date", Value: -1}})
	return r.find(ctx, bson.M{"user_id": uid}, opts)
}

func (r *MongoHistoryRepository) RecentForCourse(ctx context.Context, uid, program, course string, limit int) ([]*model.QuizResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"user_id": uid, "program": program, "course": course}, opts)
}

func (r *MongoHistoryRepository) DeleteByUser(ctx context.Context, uid string) (int64, error) {
	res, err := r.history.DeleteMany(ctx, bson.M{"user_id": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoHistoryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.QuizResult, error) {
	cursor, err := r.history.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]*model.QuizResult, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
