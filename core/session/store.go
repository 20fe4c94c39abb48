package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// Data is what a session carries between requests.
type Data struct {
	UserID   uint              `json:"user_id,omitempty"`
	Username string            `json:"username,omitempty"`
	Values   map[string]string `json:"values,omitempty"`
}

// Store persists session data by id. Load returns (nil, nil) for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON strings under "session:<id>".
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return "session:" + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, nil
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(id), raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKey(id)).Err()
}

// MemoryStore keeps sessions in process memory; they are lost on restart.
type MemoryStore struct {
	items *ttlcache.Cache[string, Data]
}

// NewMemoryStore starts the expiry loop; call Close to stop it.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	items := ttlcache.New(
		ttlcache.WithTTL[string, Data](ttl),
		ttlcache.WithDisableTouchOnHit[string, Data](),
	)
	go items.Start()
	return &MemoryStore{items: items}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	item := s.items.Get(id)
	if item == nil || item.IsExpired() {
		return nil, nil
	}
	d := item.Value()
	d.Values = copyValues(d.Values)
	return &d, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	d := *data
	d.Values = copyValues(data.Values)
	s.items.Set(id, d, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.items.Delete(id)
	return nil
}

func (s *MemoryStore) Len() int {
	return s.items.Len()
}

func (s *MemoryStore) Close() error {
	s.items.Stop()
	return nil
}

func copyValues(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
