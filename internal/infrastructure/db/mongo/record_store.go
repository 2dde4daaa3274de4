package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// RecordStore implements ports.RecordStore on MongoDB. Each logical
// collection maps to one Mongo collection; the generated record id is stored
// as the document _id.
type RecordStore struct {
	db *mongo.Database
}

func NewRecordStore(db *mongo.Database) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Create(ctx context.Context, collection string, fields ports.Fields) (ports.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["_id"] = uuid.NewString()
	doc["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ports.ErrDuplicateKey
		}
		return nil, fmt.Errorf("create record: %w", err)
	}
	return recordFromDoc(doc), nil
}

func (s *RecordStore) GetByKey(ctx context.Context, collection, key string, value any) (ports.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{fieldName(key): value}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return recordFromDoc(doc), nil
}

func (s *RecordStore) Query(ctx context.Context, collection string, filter ports.Fields) ([]ports.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.db.Collection(collection).Find(ctx, filterDoc(filter))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer cur.Close(ctx)

	var out []ports.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("query records: decode: %w", err)
		}
		out = append(out, recordFromDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return out, nil
}

func (s *RecordStore) Update(ctx context.Context, collection, id string, fields ports.Fields) (ports.Record, error) {
	return s.UpdateIf(ctx, collection, id, nil, fields)
}

// UpdateIf merges fields when every expected field still holds. The expected
// values are folded into the update filter so the check and the write are a
// single Mongo operation.
func (s *RecordStore) UpdateIf(ctx context.Context, collection, id string, expect, fields ports.Fields) (ports.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := filterDoc(expect)
	filter["_id"] = id

	set := bson.M{"updatedAt": time.Now().UTC().Format(time.RFC3339)}
	for k, v := range fields {
		set[k] = v
	}

	var doc bson.M
	err := s.db.Collection(collection).FindOneAndUpdate(ctx, filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.missOrStale(ctx, collection, id, expect)
		}
		return nil, fmt.Errorf("update record: %w", err)
	}
	return recordFromDoc(doc), nil
}

// missOrStale distinguishes a missing record from a failed precondition.
func (s *RecordStore) missOrStale(ctx context.Context, collection, id string, expect ports.Fields) error {
	if len(expect) == 0 {
		return ports.ErrRecordNotFound
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return ports.ErrRecordNotFound
	}
	return ports.ErrPreconditionFailed
}

// Ping reports backend connectivity for readiness probes.
func (s *RecordStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the store relies on. The unique email
// index backs the registration uniqueness invariant.
func (s *RecordStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	byCollection := map[string][]mongo.IndexModel{
		ports.CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ports.CollectionCases: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "doctorId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		ports.CollectionMessages: {
			{Keys: bson.D{{Key: "caseId", Value: 1}}},
		},
		ports.CollectionCaseEvents: {
			{Keys: bson.D{{Key: "caseId", Value: 1}}},
		},
		ports.CollectionDoctors: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}

	for collection, indexes := range byCollection {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", collection, err)
		}
	}
	return nil
}

func fieldName(key string) string {
	if key == "id" {
		return "_id"
	}
	return key
}

func filterDoc(filter ports.Fields) bson.M {
	doc := bson.M{}
	for k, v := range filter {
		doc[fieldName(k)] = v
	}
	return doc
}

func recordFromDoc(doc bson.M) ports.Record {
	rec := make(ports.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			rec["id"] = v
			continue
		}
		rec[k] = v
	}
	return rec
}
