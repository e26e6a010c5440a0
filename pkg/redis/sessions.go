package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/pos"
)

// Register sessions live in Redis as JSON documents so a terminal survives a
// process restart mid-sale. The catalog cache is shared across sessions.

const catalogKey = "catalog:products"

type SessionStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewSessionStore(client *redisclient.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("register:%s", id)
}

func (s *SessionStore) Save(ctx context.Context, reg *pos.Register) error {
	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal register %s: %w", reg.ID, err)
	}
	if err := s.client.Set(ctx, sessionKey(reg.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save register %s: %w", reg.ID, err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, id string) (*pos.Register, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pos.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load register %s: %w", id, err)
	}

	var reg pos.Register
	if err := json.Unmarshal([]byte(payload), &reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal register %s: %w", id, err)
	}
	return &reg, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// CatalogCache keeps the last fetched product list with a short TTL. A sale
// commit overwrites it with the post-commit fetch, so decremented stock is
// what the next session sees.
type CatalogCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redisclient.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) Put(ctx context.Context, catalog models.Catalog) error {
	payload, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.client.Set(ctx, catalogKey, payload, c.ttl).Err()
}

func (c *CatalogCache) Get(ctx context.Context) (models.Catalog, error) {
	payload, err := c.client.Get(ctx, catalogKey).Result()
	if err != nil {
		return nil, err
	}
	var catalog models.Catalog
	if err := json.Unmarshal([]byte(payload), &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return catalog, nil
}
