package mongodb

import (
	"context"

	"pass-questions/internal/codes/domain/model"
	"pass-questions/internal/codes/domain/repository"
	"pass-questions/internal/codes/usecase"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoCodeRepository stores codes in verification_codes keyed by the code
// text.
type MongoCodeRepository struct {
	db    *mongo.Database
	codes *mongo.Collection
}

var _ repository.CodeRepository = (*MongoCodeRepository)(nil)

func NewMongoCodeRepository(ctx context.Context, db *mongo.Database) (*MongoCodeRepository, error) {
	repo := &MongoCodeRepository{
		db:    db,
		codes: db.Collection(database.CollectionVerificationCodes),
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "used", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.codes.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoCodeRepository) Insert(ctx context.Context, code *model.Code) error {
	_, err := r.codes.InsertOne(ctx, code)
	if mongo.IsDuplicateKeyError(err) {
		return usecase.ErrCodeExists
	}
	return err
}

func (r *MongoCodeRepository) List(ctx context.Context, filter model.CodeFilter) ([]*model.Code, error) {
	query := bson.M{}
	if filter.Used != nil {
		query["used"] = *filter.Used
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.codes.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	codes := make([]*model.Code, 0)
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// Update clears usedAt, usedBy and usedByEmail when a code is marked
// unused.
func (r *MongoCodeRepository) Update(ctx context.Context, id string, patch model.CodePatch) error {
	set, unset := bson.M{}, bson.M{}
	if patch.Used != nil {
		set["used"] = *patch.Used
		if *patch.Used {
			set["usedAt"] = patch.UsedAt
			set["usedBy"] = patch.UsedBy
			set["usedByEmail"] = patch.UsedByEmail
		} else {
			unset["usedAt"] = ""
			unset["usedBy"] = ""
			unset["usedByEmail"] = ""
		}
	}
	if patch.ExpiresAt != nil {
		set["expiresAt"] = *patch.ExpiresAt
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		n, err := r.codes.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return usecase.ErrCodeNotFound
		}
		return nil
	}

	res, err := r.codes.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrCodeNotFound
	}
	return nil
}

func (r *MongoCodeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.codes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrCodeNotFound
	}
	return nil
}

func (r *MongoCodeRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
