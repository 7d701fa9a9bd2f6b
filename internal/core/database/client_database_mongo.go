package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/markdave123-py/content-processor/internal/core"
	"github.com/markdave123-py/content-processor/internal/models"
)

// BooksCollection holds one document per upload, chunks embedded.
const BooksCollection = "books"

var _ core.DocumentStore = (*MongoClient)(nil)

// MongoClient stores documents in a MongoDB collection.
type MongoClient struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoClient connects, pings and makes sure the listing indexes exist.
func NewMongoClient(ctx context.Context, uri, database string, logger *slog.Logger) (*MongoClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(BooksCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "uploaded_at", Value: -1}}},
		{Keys: bson.D{{Key: "uploaded_at", Value: -1}}},
	}
	if _, err := coll.Indexes().CreateMany(pingCtx, indexes); err != nil {
		logger.Warn("could not create mongo indexes", "collection", BooksCollection, "error", err)
	}

	return &MongoClient{client: client, coll: coll, logger: logger}, nil
}

func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *MongoClient) Close() error {
	return c.client.Disconnect(context.Background())
}

func (c *MongoClient) Save(ctx context.Context, doc *models.Document) (string, error) {
	if doc == nil {
		return "", errors.New("nil document")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Chunks == nil {
		doc.Chunks = []models.DocumentChunk{}
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return doc.ID, nil
}

func (c *MongoClient) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByUser projects every document to its summary server side, newest first.
func (c *MongoClient) ListByUser(ctx context.Context, userID *string, limit, offset int) ([]models.DocumentSummary, error) {
	match := bson.D{}
	if userID != nil {
		match = bson.D{{Key: "user_id", Value: *userID}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "uploaded_at", Value: -1}}}},
		{{Key: "$skip", Value: int64(offset)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "summary", Value: 1},
			{Key: "user_id", Value: 1},
			{Key: "uploaded_at", Value: 1},
			{Key: "processed_at", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "status", Value: 1},
			{Key: "chunks_count", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$chunks", bson.A{}}},
			}}}},
		}}},
	}

	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.DocumentSummary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MongoClient) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (c *MongoClient) Update(ctx context.Context, id string, upd models.DocumentUpdate) error {
	chunks := upd.Chunks
	if chunks == nil {
		chunks = []models.DocumentChunk{}
	}
	res, err := c.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "chunks", Value: chunks},
			{Key: "summary", Value: upd.Summary},
			{Key: "status", Value: upd.Status},
			{Key: "processed_at", Value: upd.ProcessedAt.UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return nil
}
