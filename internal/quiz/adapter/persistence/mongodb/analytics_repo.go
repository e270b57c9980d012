package mongodb

import (
	"context"
	"errors"
	"strings"

	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/domain/repository"
	"pass-questions/internal/quiz/usecase"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxUpdateAttempts = 5

// MongoAnalyticsRepository keeps one aggregate document per user in
// user_analytics. Writes compare and swap on the version field.
type MongoAnalyticsRepository struct {
	analytics *mongo.Collection
}

var _ repository.AnalyticsRepository = (*MongoAnalyticsRepository)(nil)

func NewMongoAnalyticsRepository(db *mongo.Database) *MongoAnalyticsRepository {
	return &MongoAnalyticsRepository{analytics: db.Collection(database.CollectionUserAnalytics)}
}

func (r *MongoAnalyticsRepository) Get(ctx context.Context, uid string) (*model.Analytics, error) {
	var a model.Analytics
	if err := r.analytics.FindOne(ctx, bson.M{"_id": uid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrAnalyticsNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoAnalyticsRepository) Update(ctx context.Context, uid string, mutate func(a *model.Analytics)) (*model.Analytics, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := r.Get(ctx, uid)
		if errors.Is(err, usecase.ErrAnalyticsNotFound) {
			fresh := model.NewAnalytics(uid)
			mutate(fresh)
			fresh.Version = 1
			if _, err := r.analytics.InsertOne(ctx, fresh); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					continue
				}
				return nil, err
			}
			return fresh, nil
		}
		if err != nil {
			return nil, err
		}

		version := current.Version
		mutate(current)
		current.Version = version + 1

		// Documents imported without a version have none stored.
		match := bson.M{"_id": uid, "version": version}
		if version == 0 {
			match["version"] = bson.M{"$in": bson.A{0, nil}}
		}
		res, err := r.analytics.ReplaceOne(ctx, match, current)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return current, nil
		}
	}
	return nil, usecase.ErrConcurrentUpdate
}

func (r *MongoAnalyticsRepository) Delete(ctx context.Context, uid string) error {
	res, err := r.analytics.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrAnalyticsNotFound
	}
	return nil
}

func (r *MongoAnalyticsRepository) RemoveWeakness(ctx context.Context, patternKey, questionID string) (int64, error) {
	if patternKey == "" || strings.ContainsAny(patternKey, ".$") {
		return 0, nil
	}
	field := "weakness_patterns." + patternKey
	res, err := r.analytics.UpdateMany(ctx,
		bson.M{field: questionID},
		bson.M{"$pull": bson.M{field: questionID}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
