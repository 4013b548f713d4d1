package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB database. Subscriptions are
// backed by change streams: on every commit-ordered event the filtered
// collection is re-queried and the full snapshot republished.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Subscribe(ctx context.Context, collection string, filters []Filter, srt Sort) (*Subscription, error) {
	coll := s.db.Collection(collection)

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := coll.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, err
	}

	ch := make(chan []Document, subscriptionBuffer)
	sub := newSubscription(ch, cancel)

	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		// Initial snapshot before the first event arrives.
		if snap, err := s.Query(streamCtx, collection, filters, srt, 0); err == nil {
			sendLatest(ch, snap)
		} else if streamCtx.Err() == nil {
			log.Printf("[MongoStore] initial snapshot for %s failed: %v", collection, err)
		}

		for stream.Next(streamCtx) {
			snap, err := s.Query(streamCtx, collection, filters, srt, 0)
			if err != nil {
				if streamCtx.Err() != nil {
					return
				}
				log.Printf("[MongoStore] re-query for %s failed: %v", collection, err)
				continue
			}
			sendLatest(ch, snap)
		}
	}()

	return sub, nil
}

func (s *MongoStore) GetOne(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters []Filter, srt Sort, limit int64) ([]Document, error) {
	opts := options.Find()
	if srt.Field != "" {
		dir := 1
		if srt.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: srt.Field, Value: dir}})
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filtersToBSON(filters), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *MongoStore) Create(ctx context.Context, collection string, fields Document) (string, error) {
	doc := cloneDoc(fields)
	id, _ := doc["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		doc["_id"] = id
	}
	for k, v := range doc {
		if isServerTimestamp(v) {
			doc[k] = time.Now().Unix()
		}
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoStore) Mutate(ctx context.Context, collection, id string, update Update) error {
	if update.empty() {
		return nil
	}

	upd := bson.M{}
	if len(update.Set) > 0 {
		set := bson.M{}
		for k, v := range update.Set {
			if isServerTimestamp(v) {
				v = time.Now().Unix()
			}
			set[k] = v
		}
		upd["$set"] = set
	}
	if len(update.AddToSet) > 0 {
		upd["$addToSet"] = bson.M(update.AddToSet)
	}
	if len(update.Pull) > 0 {
		upd["$pull"] = bson.M(update.Pull)
	}
	if len(update.Inc) > 0 {
		inc := bson.M{}
		for k, v := range update.Inc {
			inc[k] = v
		}
		upd["$inc"] = inc
	}

	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, upd)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func filtersToBSON(filters []Filter) bson.M {
	query := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case Prefix:
			// Range scan bounded by the last private-use code point, so
			// every string with the prefix sorts inside the bounds.
			if s, ok := f.Value.(string); ok {
				query[f.Field] = bson.M{"$gte": s, "$lte": s + "\uf8ff"}
			}
		default:
			// Eq and Contains translate to the same match: Mongo equality
			// on an array field means array membership.
			query[f.Field] = f.Value
		}
	}
	return query
}
