package cache

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDocument struct {
	Key       string    `bson:"_id"`
	Entry     Entry     `bson:"entry"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStore shares cached pages between server instances. MongoDB's TTL
// monitor removes expired documents; Get also filters on expires_at because
// the monitor only runs once a minute.
type MongoStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoStore creates a MongoStore backed by the "page_cache" collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("page_cache"), now: time.Now}
}

// EnsureIndexes creates the TTL index on expires_at.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create page cache TTL index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	var doc mongoDocument
	filter := bson.M{"_id": key, "expires_at": bson.M{"$gt": s.now()}}
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &doc.Entry, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	doc := mongoDocument{Key: key, Entry: *entry, ExpiresAt: s.now().Add(ttl)}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) Clear(ctx context.Context) error {
	_, err := s.collection.DeleteMany(ctx, bson.D{})
	return err
}
