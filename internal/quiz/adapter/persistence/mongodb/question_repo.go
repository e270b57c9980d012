package mongodb

import (
	"context"
	"errors"
	"fmt"

	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/domain/repository"
	"pass-questions/internal/quiz/usecase"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoQuestionRepository stores the question bank in quiz_questions.
type MongoQuestionRepository struct {
	db        *mongo.Database
	questions *mongo.Collection
}

var _ repository.QuestionRepository = (*MongoQuestionRepository)(nil)

func NewMongoQuestionRepository(ctx context.Context, db *mongo.Database) (*MongoQuestionRepository, error) {
	repo := &MongoQuestionRepository{
		db:        db,
		questions: db.Collection(database.CollectionQuizQuestions),
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "program", Value: 1}, {Key: "course", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.questions.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoQuestionRepository) Create(ctx context.Context, q *model.Question) error {
	_, err := r.questions.InsertOne(ctx, q)
	return err
}

func (r *MongoQuestionRepository) Get(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	if err := r.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *MongoQuestionRepository) List(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error) {
	query := bson.M{}
	for field, value := range map[string]string{
		"program":    filter.Program,
		"course":     filter.Course,
		"level":      filter.Level,
		"semester":   filter.Semester,
		"difficulty": filter.Difficulty,
	} {
		if value != "" {
			query[field] = value
		}
	}
	if filter.ActiveOnly {
		query["active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.questions.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questions := make([]*model.Question, 0)
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *MongoQuestionRepository) Update(ctx context.Context, id string, patch model.QuestionPatch) error {
	set := bson.M{"updatedAt": patch.UpdatedAt, "updatedBy": patch.UpdatedBy}
	if patch.Question != nil {
		set["question"] = *patch.Question
	}
	if patch.Options != nil {
		set["options"] = patch.Options
	}
	if patch.CorrectAnswer != nil {
		set["correctAnswer"] = *patch.CorrectAnswer
	}
	if patch.Explanation != nil {
		set["explanation"] = *patch.Explanation
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}

	res, err := r.questions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrQuestionNotFound
	}
	return nil
}

func (r *MongoQuestionRepository) Delete(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	if err := r.questions.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *MongoQuestionRepository) DistinctPrograms(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "program")
}

func (r *MongoQuestionRepository) DistinctCourses(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "course")
}

func (r *MongoQuestionRepository) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.questions.Distinct(ctx, field, bson.M{})
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

func (r *MongoQuestionRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
