package mongodb

import (
	"context"
	"errors"
	"time"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	"pass-questions/internal/auth/usecase"
	"pass-questions/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoUserRepository stores user profiles keyed by uid.
type MongoUserRepository struct {
	db    *mongo.Database
	users *mongo.Collection
}

var _ repository.UserRepository = (*MongoUserRepository)(nil)

// NewMongoUserRepository creates the repository and its indexes.
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (*MongoUserRepository, error) {
	repo := &MongoUserRepository{
		db:    db,
		users: db.Collection(database.CollectionUsers),
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "paid", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := repo.users.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, usecase.ErrUIDRequired
	}
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if user == nil || user.UID == "" {
		return usecase.ErrUIDRequired
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrUserExists
		}
		return err
	}
	return nil
}

// StartSession overwrites the active session fields so any earlier
// session of the same user stops validating.
func (r *MongoUserRepository) StartSession(ctx context.Context, uid string, start repository.SessionStart) error {
	at := start.At.UTC()
	update := bson.M{
		"$set": bson.M{
			"active_session_id":  start.SessionID,
			"session_created":    at,
			"device_fingerprint": start.DeviceFingerprint,
			"last_login":         at,
			"updated_at":         at,
		},
		"$inc": bson.M{"login_count": 1},
	}
	return r.updateOne(ctx, uid, update)
}

func (r *MongoUserRepository) ClearSession(ctx context.Context, uid string) error {
	update := bson.M{
		"$unset": bson.M{
			"active_session_id":  "",
			"session_created":    "",
			"device_fingerprint": "",
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.updateOne(ctx, uid, update)
}

func (r *MongoUserRepository) UpdateRole(ctx context.Context, uid, role string) error {
	return r.updateOne(ctx, uid, bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
}

func (r *MongoUserRepository) UpdatePaid(ctx context.Context, uid string, paid bool) error {
	return r.updateOne(ctx, uid, bson.M{"$set": bson.M{"paid": paid, "updated_at": time.Now().UTC()}})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, uid string, update bson.M) error {
	if uid == "" {
		return usecase.ErrUIDRequired
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*model.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoUserRepository) ListPaid(ctx context.Context) ([]*model.User, error) {
	return r.find(ctx, bson.M{"paid": true})
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{})
}

func (r *MongoUserRepository) CountPaid(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{"paid": true})
}

func (r *MongoUserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}})
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
