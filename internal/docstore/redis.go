package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix    = "doc:"
	colKeyPrefix    = "col:"
	changeKeyPrefix = "docs:"
	connectTimeout  = 5 * time.Second
)

// RedisStore is a Store backed by Redis. Each document is a JSON string
// under "doc:<path>", each collection keeps a set of member ids under
// "col:<collection>", and a pub/sub channel per collection carries change
// notifications, so subscriptions see writes from other processes too.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed document store and verifies the
// connection.
func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, path Path) (Document, error) {
	val, err := r.client.Get(ctx, docKeyPrefix+path.String()).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return decodeDocument(val)
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, path Path, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	collection := parentOf(path)
	id := path[len(path)-1]

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKeyPrefix+path.String(), data, 0)
	pipe.SAdd(ctx, colKeyPrefix+collection, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	return r.publishChange(ctx, collection)
}

// Update implements Store.
func (r *RedisStore) Update(ctx context.Context, path Path, fields Document) error {
	existing, err := r.Get(ctx, path)
	if err != nil {
		return err
	}

	merged := existing.Clone()
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := r.client.Set(ctx, docKeyPrefix+path.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	return r.publishChange(ctx, parentOf(path))
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, path Path) error {
	collection := parentOf(path)
	id := path[len(path)-1]

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, docKeyPrefix+path.String())
	pipe.SRem(ctx, colKeyPrefix+collection, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if del.Val() > 0 {
		return r.publishChange(ctx, collection)
	}
	return nil
}

// Subscribe implements Store.
func (r *RedisStore) Subscribe(ctx context.Context, collection Path) (Subscription, error) {
	initial, err := r.snapshot(ctx, collection.String())
	if err != nil {
		return nil, err
	}

	pubsub := r.client.Subscribe(ctx, changeKeyPrefix+collection.String())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := &redisSub{
		ch:     make(chan Snapshot, 1),
		pubsub: pubsub,
	}

	go sub.run(r, collection.String(), initial)
	return sub, nil
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) publishChange(ctx context.Context, collection string) error {
	return r.client.Publish(ctx, changeKeyPrefix+collection, "changed").Err()
}

func (r *RedisStore) snapshot(ctx context.Context, collection string) (Snapshot, error) {
	ids, err := r.client.SMembers(ctx, colKeyPrefix+collection).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list collection: %w", err)
	}
	if len(ids) == 0 {
		return Snapshot{}, nil
	}

	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKeyPrefix + collection + "/" + id
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to fetch collection: %w", err)
	}

	var snap Snapshot
	for i, val := range vals {
		str, ok := val.(string)
		if !ok {
			continue // id in the set but document already gone
		}
		doc, err := decodeDocument(str)
		if err != nil {
			continue
		}
		snap.Docs = append(snap.Docs, SnapshotDoc{ID: ids[i], Data: doc})
	}

	return snap, nil
}

// redisSub is the Subscription implementation for RedisStore. A single
// goroutine owns the snapshot channel; it re-queries the collection on
// every change message and coalesces like the in-process backends.
type redisSub struct {
	ch     chan Snapshot
	pubsub *redis.PubSub
}

func (s *redisSub) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *redisSub) Cancel() {
	s.pubsub.Close()
}

func (s *redisSub) run(store *RedisStore, collection string, initial Snapshot) {
	defer close(s.ch)

	s.deliver(initial)

	for range s.pubsub.Channel() {
		snap, err := store.snapshot(context.Background(), collection)
		if err != nil {
			continue
		}
		s.deliver(snap)
	}
}

func (s *redisSub) deliver(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
