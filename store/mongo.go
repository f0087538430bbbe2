package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 每批写入的文档数
const INSERT_BATCH_SIZE = 1000

// NewMongoClient 连接MongoDB并检查连通性
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// MongoStore 所有年份的Record存放在同一集合中，以year区分
type MongoStore struct {
	coll func() (*mongo.Collection, error)
}

// NewMongoStore 首次访问时才通过coll取得集合
func NewMongoStore(coll func() (*mongo.Collection, error)) *MongoStore {
	return &MongoStore{coll: coll}
}

// StaticCollection 包装已连接的集合
func StaticCollection(coll *mongo.Collection) func() (*mongo.Collection, error) {
	return func() (*mongo.Collection, error) {
		return coll, nil
	}
}

func (s *MongoStore) Load(ctx context.Context, year int) (*Snapshot, error) {
	coll, err := s.coll()
	if err != nil {
		return nil, err
	}
	log.Infof("download snapshot of year %d from %s.%s", year, coll.Database().Name(), coll.Name())
	cur, err := coll.Find(ctx, bson.M{"year": year}, options.Find().SetSort(bson.D{{Key: "node", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find snapshot of year %d: %w", year, err)
	}
	defer cur.Close(ctx)
	a := newAssembler(year)
	count := 0
	for cur.Next(ctx) {
		var rec Record
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		if err := a.add(rec); err != nil {
			return nil, err
		}
		count++
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: year %d in %s", ErrNotFound, year, coll.Name())
	}
	return a.finish()
}

// Save 替换该年份的全部文档
func (s *MongoStore) Save(ctx context.Context, snapshot *Snapshot) error {
	coll, err := s.coll()
	if err != nil {
		return err
	}
	if _, err := coll.DeleteMany(ctx, bson.M{"year": snapshot.Year}); err != nil {
		return fmt.Errorf("delete snapshot of year %d: %w", snapshot.Year, err)
	}
	records := snapshot.Records()
	batch := make([]interface{}, 0, INSERT_BATCH_SIZE)
	for i, rec := range records {
		batch = append(batch, rec)
		if len(batch) == INSERT_BATCH_SIZE || i == len(records)-1 {
			if _, err := coll.InsertMany(ctx, batch); err != nil {
				return fmt.Errorf("insert snapshot of year %d: %w", snapshot.Year, err)
			}
			batch = batch[:0]
		}
	}
	log.Infof("uploaded %d records of year %d to %s", len(records), snapshot.Year, coll.Name())
	return nil
}
