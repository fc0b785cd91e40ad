// Package cache guarda la instantánea del reporte general en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

// ReportKey clave de la instantánea.
const ReportKey = "estoque:relatorio:geral"

var _ repository.ReportCache = (*RedisReportCache)(nil)

// New crea el cliente y verifica la conexión con un ping de 5s.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// RedisReportCache serializa el reporte en JSON con TTL.
type RedisReportCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisReportCache ttl <= 0 deja la clave sin expiración.
func NewRedisReportCache(client redis.Cmdable, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Get(ctx context.Context) (*entity.Report, error) {
	raw, err := c.client.Get(ctx, ReportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get: %w", err)
	}
	var r entity.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	return &r, nil
}

func (c *RedisReportCache) Set(ctx context.Context, r *entity.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, ReportKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

// Invalidate borra la instantánea.
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, ReportKey).Err()
}
