package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session snapshot expired or never existed.
var ErrSessionNotFound = errors.New("editing session not found")

// CatalogStore keeps the product catalog snapshot of an invoice editing
// session. The snapshot is written once when the session starts and is only
// appended to afterwards; writes by other sessions never invalidate it.
type CatalogStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogStore(client *redis.Client, ttl time.Duration) *CatalogStore {
	return &CatalogStore{client: client, ttl: ttl}
}

func catalogKey(sessionID string) string {
	return fmt.Sprintf("invoice:session:%s:catalog", sessionID)
}

func metaKey(sessionID string) string {
	return fmt.Sprintf("invoice:session:%s:meta", sessionID)
}

// Save stores products as the session snapshot, replacing any previous one.
func (s *CatalogStore) Save(ctx context.Context, sessionID string, products []model.Product) error {
	values, err := encodeProducts(products)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, catalogKey(sessionID))
		if len(values) > 0 {
			pipe.RPush(ctx, catalogKey(sessionID), values...)
			pipe.Expire(ctx, catalogKey(sessionID), s.ttl)
		}
		// marker so an empty catalog still counts as a live session
		pipe.Set(ctx, metaKey(sessionID), time.Now().UTC().Format(time.RFC3339), s.ttl)
		return nil
	})
	return err
}

// Load returns the snapshot in insertion order.
func (s *CatalogStore) Load(ctx context.Context, sessionID string) ([]model.Product, error) {
	exists, err := s.client.Exists(ctx, metaKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	raw, err := s.client.LRange(ctx, catalogKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(raw))
	for _, r := range raw {
		var p model.Product
		if err := json.Unmarshal([]byte(r), &p); err != nil {
			return nil, fmt.Errorf("decode catalog entry: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

// Append adds newly created products to a live snapshot and refreshes its TTL.
func (s *CatalogStore) Append(ctx context.Context, sessionID string, products ...model.Product) error {
	if len(products) == 0 {
		return nil
	}
	values, err := encodeProducts(products)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, catalogKey(sessionID), values...)
		pipe.Expire(ctx, catalogKey(sessionID), s.ttl)
		pipe.Expire(ctx, metaKey(sessionID), s.ttl)
		return nil
	})
	return err
}

func encodeProducts(products []model.Product) ([]interface{}, error) {
	values := make([]interface{}, 0, len(products))
	for i := range products {
		b, err := json.Marshal(&products[i])
		if err != nil {
			return nil, err
		}
		values = append(values, string(b))
	}
	return values, nil
}
