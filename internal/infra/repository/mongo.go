package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository[T any] struct {
	mongo *mongo.Database
}

func NewMongoRepository[T any](mongo *mongo.Database) *MongoRepository[T] {
	return &MongoRepository[T]{mongo: mongo}
}

func (r *MongoRepository[T]) Create(ctx context.Context, collectionName string, entity T) (T, error) {
	collection := r.mongo.Collection(collectionName)
	_, err := collection.InsertOne(ctx, entity)
	return entity, err
}

// Upsert replaces the document keyed by session_id, creating it when absent.
// Repeated upserts for the same session overwrite instead of duplicating.
func (r *MongoRepository[T]) Upsert(ctx context.Context, collectionName string, sessionID string, entity T) (T, error) {
	collection := r.mongo.Collection(collectionName)
	filter := bson.M{"session_id": sessionID}

	update := bson.M{
		"$set": entity,
	}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return entity, err
}

func (r *MongoRepository[T]) Delete(ctx context.Context, collectionName string, sessionID string) error {
	collection := r.mongo.Collection(collectionName)
	filter := bson.M{"session_id": sessionID}
	_, err := collection.DeleteOne(ctx, filter)
	return err
}

func (r *MongoRepository[T]) FindBySessionID(ctx context.Context, collectionName string, sessionID string) (T, error) {
	var entity T
	collection := r.mongo.Collection(collectionName)
	filter := bson.M{"session_id": sessionID}
	err := collection.FindOne(ctx, filter).Decode(&entity)
	return entity, err
}

// FindByCallerSince returns the caller's documents created after the cutoff,
// newest first.
func (r *MongoRepository[T]) FindByCallerSince(ctx context.Context, collectionName string, fromNumber string, tenantID string, since time.Time) ([]T, error) {
	collection := r.mongo.Collection(collectionName)
	filter := bson.M{
		"from_number": fromNumber,
		"tenant_id":   tenantID,
		"created_at":  bson.M{"$gte": since},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entities []T
	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, cursor.Err()
}
