package mirror

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultCollection = "mirror_objects"

// Mongo is a Store that keeps each object as a document in a MongoDB
// collection, keyed by the mirror key.
type Mongo struct {
	collection *mongo.Collection
}

type mongoObject struct {
	Key  string `bson:"_id"`
	Data []byte `bson:"data"`
}

// MongoConfig describes the MongoDB mirror target.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// NewMongo connects to MongoDB and returns a store plus a close function
// that disconnects the client.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, func(context.Context) error, error) {
	if cfg.URI == "" {
		return nil, nil, errors.New("mirror: mongo URI is required")
	}
	if cfg.Database == "" {
		return nil, nil, errors.New("mirror: mongo database is required")
	}
	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mirror: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mirror: ping mongo: %w", err)
	}

	store := &Mongo{collection: client.Database(cfg.Database).Collection(collection)}
	return store, client.Disconnect, nil
}

// NewMongoWithCollection wraps an existing collection; the caller owns the
// client's lifecycle. Used by tests and embedders with their own client.
func NewMongoWithCollection(collection *mongo.Collection) *Mongo {
	return &Mongo{collection: collection}
}

func (s *Mongo) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoObject{Key: key, Data: data},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mirror: put %s: %w", key, err)
	}
	return nil
}

func (s *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	var obj mongoObject
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&obj)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("mirror: get %s: %w", key, err)
	}
	return obj.Data, nil
}

func (s *Mongo) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mirror: delete %s: %w", key, err)
	}
	return nil
}

var _ Store = (*Mongo)(nil)
