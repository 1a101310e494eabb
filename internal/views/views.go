// Package views lleva en Redis un contador de versión por culto y por mes. Cada invalidación incrementa
// el contador y publica la clave para que los clientes suscritos refresquen sus vistas.
package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client es el subconjunto de *redis.Client que se usa aquí.
type Client interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type Invalidator struct {
	client  Client
	channel string
	timeout time.Duration
}

func NewInvalidator(client Client, channel string, timeout time.Duration) *Invalidator {
	return &Invalidator{
		client:  client,
		channel: channel,
		timeout: timeout,
	}
}

func ServiceKey(serviceID int64) string {
	return fmt.Sprintf("views:service:%d", serviceID)
}

func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("views:month:%04d-%02d", year, int(month))
}

func (v *Invalidator) InvalidateService(ctx context.Context, serviceID int64) error {
	return v.bump(ctx, ServiceKey(serviceID))
}

func (v *Invalidator) InvalidateMonth(ctx context.Context, year int, month time.Month) error {
	return v.bump(ctx, MonthKey(year, month))
}

// ServiceVersion devuelve la versión actual de la vista de un culto; 0 si nunca se invalidó.
func (v *Invalidator) ServiceVersion(ctx context.Context, serviceID int64) (int64, error) {
	return v.version(ctx, ServiceKey(serviceID))
}

func (v *Invalidator) MonthVersion(ctx context.Context, year int, month time.Month) (int64, error) {
	return v.version(ctx, MonthKey(year, month))
}

func (v *Invalidator) bump(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := v.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("incrementar %s: %w", key, err)
	}
	if err := v.client.Publish(ctx, v.channel, key).Err(); err != nil {
		return fmt.Errorf("publicar %s: %w", key, err)
	}

	return nil
}

func (v *Invalidator) version(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	raw, err := v.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(raw, 10, 64)
}
