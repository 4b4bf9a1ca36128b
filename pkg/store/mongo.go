package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/promptstack/promptstack/pkg/errors"
)

const mongoStateID = "workspace"

// MongoStore keeps state in a MongoDB collection, one document per
// workspace.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// stateDoc is the stored document. The state travels as a JSON payload
// so the document schema stays stable across graph shape changes.
type stateDoc struct {
	ID      string `bson:"_id"`
	Payload []byte `bson:"payload"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "ping mongodb")
	}

	db := cfg.Database
	if db == "" {
		db = "promptstack"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "state"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

func (s *MongoStore) Load(ctx context.Context) (*State, error) {
	var doc stateDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": mongoStateID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return DefaultState(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load state from mongodb")
	}
	return decodeState(doc.Payload), nil
}

func (s *MongoStore) Save(ctx context.Context, state *State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": mongoStateID},
		stateDoc{ID: mongoStateID, Payload: data},
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "save state to mongodb")
	}
	return nil
}

func (s *MongoStore) Reset(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": mongoStateID}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "reset state in mongodb")
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
