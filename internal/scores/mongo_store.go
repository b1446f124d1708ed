package scores

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hersh/blitztris/internal/protocol"
)

// MongoConfig contains connection settings for the Mongo score store.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. tetris
	Collection string // e.g. scores
}

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type scoreDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Score int                `bson:"score"`
	Level int                `bson:"level"`
	Date  time.Time          `bson:"date"`
}

func (d scoreDoc) record() protocol.ScoreRecord {
	return protocol.ScoreRecord{
		ID:    d.ID.Hex(),
		Name:  d.Name,
		Score: d.Score,
		Level: d.Level,
		Date:  d.Date,
	}
}

// NewMongoStore connects, pings and makes sure the leaderboard index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "tetris"
	}
	if cfg.Collection == "" {
		cfg.Collection = "scores"
	}

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	m := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "score", Value: -1}},
		Options: options.Index().SetName("score_desc"),
	})
	if err != nil {
		return fmt.Errorf("mongo index: %w", err)
	}
	return nil
}

func (m *MongoStore) Insert(ctx context.Context, rec protocol.ScoreRecord) (protocol.ScoreRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()
	doc := scoreDoc{
		Name:  rec.Name,
		Score: rec.Score,
		Level: rec.Level,
		Date:  rec.Date,
	}
	res, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return protocol.ScoreRecord{}, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return protocol.ScoreRecord{}, fmt.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	doc.ID = id
	return doc.record(), nil
}

func (m *MongoStore) List(ctx context.Context) ([]protocol.ScoreRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()
	cur, err := m.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "score", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []scoreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	recs := make([]protocol.ScoreRecord, len(docs))
	for i, d := range docs {
		recs[i] = d.record()
	}
	return recs, nil
}

func (m *MongoStore) Rename(ctx context.Context, id, name string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()
	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close terminates the connection.
func (m *MongoStore) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
