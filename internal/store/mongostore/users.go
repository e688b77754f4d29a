package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"authd/internal/store"
)

type userStore struct {
	coll *mongo.Collection
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*store.User, error) {
	var u store.User
	err := s.coll.FindOne(ctx, bson.M{"email": store.NormalizeEmail(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *userStore) Insert(ctx context.Context, u *store.User) error {
	u.Email = store.NormalizeEmail(u.Email)
	if u.Email == "" || u.Password == "" {
		return errors.New("insert user: email and password are required")
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (s *userStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}
