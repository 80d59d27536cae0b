// Package cache хранит в redis идентификаторы уже обработанных событий
// биллинга, чтобы повторные доставки вебхуков не применялись дважды.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/mentor-gateway/internal/config"
)

const eventKeyPrefix = "billing:event:"

type Cache struct {
	Db *redis.Client
}

func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Seen сообщает, было ли событие с данным идентификатором уже применено.
func (c *Cache) Seen(ctx context.Context, eventID string) (bool, error) {
	const op = "cache.Seen"
	err := c.Db.Get(ctx, eventKeyPrefix+eventID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Mark запоминает событие как применённое на время ttl.
func (c *Cache) Mark(ctx context.Context, eventID string, ttl time.Duration) error {
	const op = "cache.Mark"
	if err := c.Db.Set(ctx, eventKeyPrefix+eventID, time.Now().UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping проверяет доступность redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.Db.Close()
}
