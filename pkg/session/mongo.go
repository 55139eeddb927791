package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Sessions"

type sessionDocument struct {
	Profile   string    `bson:"_id"`
	Access    string    `bson:"accessToken"`
	Refresh   string    `bson:"refreshToken"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per profile.
type MongoStore struct {
	collection *mongo.Collection
	profile    string
	timeout    time.Duration
}

func NewMongoStore(db *mongo.Database, profile string, timeout time.Duration) *MongoStore {
	return &MongoStore{
		collection: db.Collection(CollectionName),
		profile:    profile,
		timeout:    timeout,
	}
}

// ConnectMongo dials and pings the server within timeout.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < s.timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) Load(ctx context.Context) (Tokens, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc sessionDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": s.profile}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Tokens{}, nil
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to load session %q: %w", s.profile, err)
	}
	return Tokens{Access: doc.Access, Refresh: doc.Refresh}, nil
}

func (s *MongoStore) Save(ctx context.Context, tokens Tokens) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc := sessionDocument{
		Profile:   s.profile,
		Access:    tokens.Access,
		Refresh:   tokens.Refresh,
		UpdatedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": s.profile}, doc, opts); err != nil {
		return fmt.Errorf("failed to save session %q: %w", s.profile, err)
	}
	return nil
}

func (s *MongoStore) SetAccess(ctx context.Context, access string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		AccessTokenKey: access,
		"updated_at":   time.Now().UTC(),
	}}
	filter := bson.M{
		"_id":           s.profile,
		RefreshTokenKey: bson.M{"$exists": true, "$ne": ""},
	}
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update access token for %q: %w", s.profile, err)
	}
	if result.MatchedCount == 0 {
		return ErrNoSession
	}
	return nil
}

func (s *MongoStore) Clear(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": s.profile}); err != nil {
		return fmt.Errorf("failed to clear session %q: %w", s.profile, err)
	}
	return nil
}
