package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongoStore(ctx context.Context, mongoURI, dbName string, logger *zap.Logger) (*MongoStore, error) {
	opts := options.Client().ApplyURI(mongoURI)
	mongoClient, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client: mongoClient,
		db:     mongoClient.Database(dbName),
		logger: logger,
	}, nil
}

func (s *MongoStore) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert goes through an upsert so created_at and updated_at come from the
// server clock via $currentDate.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc any) (bson.ObjectID, error) {
	fields, err := documentFields(doc)
	if err != nil {
		return bson.ObjectID{}, err
	}

	id := bson.NewObjectID()
	update := bson.D{
		{Key: "$setOnInsert", Value: fields},
		{Key: "$currentDate", Value: bson.D{
			{Key: "created_at", Value: true},
			{Key: "updated_at", Value: true},
		}},
	}

	_, err = s.db.Collection(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return bson.ObjectID{}, err
	}

	return id, nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, id bson.ObjectID) (bson.Raw, error) {
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter) ([]bson.Raw, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.db.Collection(collection).Find(ctx, mongoFilter(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []bson.Raw{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *MongoStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, mongoFilter(filter))
}

func (s *MongoStore) Update(ctx context.Context, collection string, id bson.ObjectID, fields Fields) error {
	setDoc := bson.M{}
	currentDateDoc := bson.M{}
	for key, value := range fields {
		if _, ok := value.(serverTimestamp); ok {
			currentDateDoc[key] = true
			continue
		}
		setDoc[key] = value
	}

	update := bson.D{}
	if len(setDoc) > 0 {
		update = append(update, bson.E{Key: "$set", Value: setDoc})
	}
	if len(currentDateDoc) > 0 {
		update = append(update, bson.E{Key: "$currentDate", Value: currentDateDoc})
	}

	if len(update) == 0 {
		return nil
	}

	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection string, id bson.ObjectID) error {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// Subscribe watches the whole collection and re-queries the filter on every
// event. Delete events carry no document, so filtering the stream itself would
// miss records leaving the set.
func (s *MongoStore) Subscribe(ctx context.Context, collection string, filter Filter) (*Subscription, error) {
	sub, ctx, out := newSubscription(ctx)

	stream, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		sub.cancel()
		close(sub.done)
		return nil, err
	}

	go func() {
		defer close(sub.done)
		defer close(out)
		defer stream.Close(context.Background())

		send := func() bool {
			docs, err := s.Find(ctx, collection, filter)
			if err != nil {
				s.logger.Warn("subscription re-query failed",
					zap.String("collection", collection), zap.Error(err))
				return ctx.Err() == nil
			}

			select {
			case out <- docs:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}

		for stream.Next(ctx) {
			if !send() {
				return
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.logger.Error("change stream stopped",
				zap.String("collection", collection), zap.Error(err))
		}
	}()

	return sub, nil
}

func mongoFilter(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
