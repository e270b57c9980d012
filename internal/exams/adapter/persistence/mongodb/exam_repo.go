package mongodb

import (
	"context"
	"errors"
	"fmt"

	"pass-questions/internal/exams/domain/model"
	"pass-questions/internal/exams/domain/repository"
	"pass-questions/internal/exams/usecase"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoExamRepository stores exam metadata in admin_uploads.
type MongoExamRepository struct {
	db    *mongo.Database
	exams *mongo.Collection
}

var _ repository.ExamRepository = (*MongoExamRepository)(nil)

func NewMongoExamRepository(ctx context.Context, db *mongo.Database) (*MongoExamRepository, error) {
	repo := &MongoExamRepository{
		db:    db,
		exams: db.Collection(database.CollectionAdminUploads),
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploadDate", Value: -1}}},
		{Keys: bson.D{{Key: "program", Value: 1}, {Key: "course", Value: 1}}},
	}
	if _, err := repo.exams.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	if _, err := r.exams.InsertOne(ctx, exam); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrExamExists
		}
		return err
	}
	return nil
}

func (r *MongoExamRepository) Get(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	if err := r.exams.FindOne(ctx, bson.M{"_id": id}).Decode(&exam); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *MongoExamRepository) List(ctx context.Context) ([]*model.Exam, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	cursor, err := r.exams.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exams := make([]*model.Exam, 0)
	if err := cursor.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *MongoExamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.exams.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrExamNotFound
	}
	return nil
}

func (r *MongoExamRepository) Count(ctx context.Context) (int64, error) {
	return r.exams.CountDocuments(ctx, bson.M{})
}

func (r *MongoExamRepository) DistinctPrograms(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "program")
}

func (r *MongoExamRepository) DistinctCourses(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "course")
}

func (r *MongoExamRepository) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.exams.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *MongoExamRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
