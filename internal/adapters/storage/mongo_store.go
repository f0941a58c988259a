package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// predictionDocument pairs the store-assigned identifier with the domain
// record for (un)marshalling.
type predictionDocument struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	core.PredictionRecord `bson:",inline"`
}

// MongoStore is the document-store implementation of core.PredictionStore.
// The driver's bounded connection pool is the single synchronization point
// between the orchestrator and the store; writes use majority write
// concern, trading latency for durability.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoStore connects to the document store with bounded pool sizes and
// timeouts and ensures the query indexes exist.
func NewMongoStore(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPersistenceUnavailable, err)
	}

	db := client.Database(cfg.Database, options.Database().
		SetWriteConcern(writeconcern.Majority()))

	store := &MongoStore{
		client:     client,
		collection: db.Collection(cfg.Collection),
		logger:     logger,
	}

	if err := store.ensureIndexes(ctx); err != nil {
		// Queries still work without indexes, just slower.
		logger.Warn("Failed to create indexes", zap.Error(err))
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
		zap.Uint64("min_pool_size", cfg.MinPoolSize),
		zap.Uint64("max_pool_size", cfg.MaxPoolSize))

	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Time-ordered retrieval, newest first.
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		// Filtering by label combined with the time ordering.
		{Keys: bson.D{{Key: "prediction", Value: 1}, {Key: "timestamp", Value: -1}}},
		// Duplicate-file audit queries by content fingerprint.
		{Keys: bson.D{{Key: "attachments.sha256", Value: 1}}},
	})
	return err
}

// Insert persists a new record and returns its store-assigned identifier.
func (s *MongoStore) Insert(ctx context.Context, record *core.PredictionRecord) (string, error) {
	doc := predictionDocument{PredictionRecord: *record}

	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", wrapStoreErr(err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id.Hex(), nil
}

// List returns a page of records sorted by timestamp descending.
func (s *MongoStore) List(ctx context.Context, opts core.ListOptions) (*core.ReportPage, error) {
	filter := bson.M{}
	if opts.Prediction != "" {
		filter["prediction"] = opts.Prediction
	}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(opts.Offset)
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer cursor.Close(ctx)

	var docs []predictionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapStoreErr(err)
	}

	reports := make([]core.PredictionRecord, 0, len(docs))
	for _, doc := range docs {
		record := doc.PredictionRecord
		record.ID = doc.ID.Hex()
		reports = append(reports, record)
	}

	return &core.ReportPage{Total: total, Reports: reports}, nil
}

// FindByID returns a single record by its identifier.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*core.PredictionRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed identifier can never match a stored record.
		return nil, core.ErrNotFound
	}

	var doc predictionDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	record := doc.PredictionRecord
	record.ID = doc.ID.Hex()
	return &record, nil
}

// CountBySHA256 counts records containing an attachment with the given
// content fingerprint.
func (s *MongoStore) CountBySHA256(ctx context.Context, sha256 string) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"attachments.sha256": sha256})
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return count, nil
}

// Ping verifies store connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistenceUnavailable, err)
	}
	return nil
}

// Close disconnects from the document store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// wrapStoreErr maps driver failures to the domain taxonomy. Timeouts and
// server-selection failures mean the pool could not obtain a usable
// connection within its bounded wait.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", core.ErrPersistenceUnavailable, err)
	}
	return err
}
