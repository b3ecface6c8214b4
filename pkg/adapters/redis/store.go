package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "pfc:chart:"

// farFuture is the index score of records that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.ChartStore using Redis. Record sets are stored as
// msgpack under prefix+name; a sorted set at prefix+"index" tracks names
// scored by expiry so List can prune entries whose key has expired.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	codec  schema.Codec
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for stored charts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithCodec replaces the msgpack payload encoding.
func WithCodec(codec schema.Codec) Option {
	return func(s *Store) {
		s.codec = codec
	}
}

// New creates a new Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		codec:  schema.Msgpack,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the record set and refreshes its index entry.
func (s *Store) Save(ctx context.Context, rec *schema.Chart) error {
	if rec.Name == "" || rec.Name == "index" {
		return fmt.Errorf("%w: %q", ports.ErrInvalidName, rec.Name)
	}
	data, err := schema.Encode(s.codec, rec)
	if err != nil {
		return err
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(rec.Name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: rec.Name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save chart to redis: %w", err)
	}
	return nil
}

// Load retrieves and validates the record set.
func (s *Store) Load(ctx context.Context, name string) (*schema.Chart, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", ports.ErrChartNotFound, name)
		}
		return nil, fmt.Errorf("failed to get chart from redis: %w", err)
	}
	return schema.Decode(s.codec, val)
}

// Delete removes the record set and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete chart from redis: %w", err)
	}
	return nil
}

// List prunes expired index entries and returns the remaining names in
// ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired charts: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
