package mongodb

import (
	"context"
	"errors"
	"time"

	"pass-questions/internal/exams/domain/repository"
	"pass-questions/internal/exams/usecase"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// deletionDoc is one user's hidden ids. Exams and questions live in
// separate collections with the same shape apart from the id field.
type deletionDoc struct {
	UserID       string    `bson:"user_id"`
	ExamIDs      []string  `bson:"exam_ids,omitempty"`
	QuestionIDs  []string  `bson:"question_ids,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	LastUpdated  time.Time `bson:"last_updated"`
	UpdatedCount int       `bson:"updated_count"`
}

// MongoDeletionRepository keeps user_deleted_exams and
// user_deleted_questions, one document per user.
type MongoDeletionRepository struct {
	exams     *mongo.Collection
	questions *mongo.Collection
}

var _ repository.DeletionRepository = (*MongoDeletionRepository)(nil)

func NewMongoDeletionRepository(db *mongo.Database) *MongoDeletionRepository {
	return &MongoDeletionRepository{
		exams:     db.Collection(database.CollectionUserDeletedExams),
		questions: db.Collection(database.CollectionUserDeletedQuestions),
	}
}

func (r *MongoDeletionRepository) MarkExamsDeleted(ctx context.Context, uid string, examIDs []string) error {
	return r.mark(ctx, r.exams, "exam_ids", uid, examIDs)
}

func (r *MongoDeletionRepository) MarkQuestionsDeleted(ctx context.Context, uid string, questionIDs []string) error {
	return r.mark(ctx, r.questions, "question_ids", uid, questionIDs)
}

// mark adds ids to the user's set, creating the document on first use.
func (r *MongoDeletionRepository) mark(ctx context.Context, coll *mongo.Collection, field, uid string, ids []string) error {
	if uid == "" {
		return usecase.ErrUserIDRequired
	}
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	update := bson.M{
		"$addToSet":    bson.M{field: bson.M{"$each": ids}},
		"$set":         bson.M{"last_updated": now},
		"$setOnInsert": bson.M{"user_id": uid, "created_at": now},
		"$inc":         bson.M{"updated_count": 1},
	}
	_, err := coll.UpdateOne(ctx, bson.M{"_id": uid}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoDeletionRepository) DeletedExamIDs(ctx context.Context, uid string) ([]string, error) {
	doc, err := r.load(ctx, r.exams, uid)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.ExamIDs, nil
}

func (r *MongoDeletionRepository) DeletedQuestionIDs(ctx context.Context, uid string) ([]string, error) {
	doc, err := r.load(ctx, r.questions, uid)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.QuestionIDs, nil
}

func (r *MongoDeletionRepository) load(ctx context.Context, coll *mongo.Collection, uid string) (*deletionDoc, error) {
	if uid == "" {
		return nil, usecase.ErrUserIDRequired
	}
	var doc deletionDoc
	err := coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
