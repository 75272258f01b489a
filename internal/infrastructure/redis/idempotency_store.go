// Package redis guarda las claves de idempotencia de caja en Redis para que
// varias instancias de la API compartan las reservas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Supermercado-api/internal/application/checkout"
)

var _ checkout.IdempotencyStore = (*IdempotencyStore)(nil)

const (
	keyPrefix    = "checkout:req:"
	pendingValue = "pending"
)

// IdempotencyStore reserva con SET NX; el valor es "pending" o el ID de la orden creada.
type IdempotencyStore struct {
	client *goredis.Client
}

// NewClient crea el cliente Redis.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewIdempotencyStore construye el store sobre un cliente existente.
func NewIdempotencyStore(client *goredis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Ping verifica la conexión.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pendingValue, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis reserve: %w", err)
	}
	if ok {
		return "", true, nil
	}
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Expiró entre SETNX y GET: se trata como en curso; el cliente reintenta.
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	if val == pendingValue {
		return "", false, nil
	}
	return val, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, orderID, ttl).Err(); err != nil {
		return fmt.Errorf("redis complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}
