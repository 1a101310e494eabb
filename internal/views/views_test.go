package views

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	values    map[string]int64
	published []string
	failIncr  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: make(map[string]int64)}
}

func (f *fakeClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.failIncr != nil {
		return redis.NewIntResult(0, f.failIncr)
	}
	f.values[key]++
	return redis.NewIntResult(f.values[key], nil)
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(v, 10), nil)
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	f.published = append(f.published, channel+" "+message.(string))
	return redis.NewIntResult(1, nil)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "views:service:42", ServiceKey(42))
	assert.Equal(t, "views:month:2025-01", MonthKey(2025, time.January))
}

func TestInvalidateBumpsAndPublishes(t *testing.T) {
	client := newFakeClient()
	inv := NewInvalidator(client, "views:invalidate", time.Second)
	ctx := context.Background()

	v, err := inv.ServiceVersion(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, inv.InvalidateService(ctx, 7))
	require.NoError(t, inv.InvalidateService(ctx, 7))
	require.NoError(t, inv.InvalidateMonth(ctx, 2025, time.March))

	v, err = inv.ServiceVersion(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = inv.MonthVersion(ctx, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	assert.Equal(t, []string{
		"views:invalidate views:service:7",
		"views:invalidate views:service:7",
		"views:invalidate views:month:2025-03",
	}, client.published)
}

func TestInvalidateDoesNotPublishWhenIncrFails(t *testing.T) {
	client := newFakeClient()
	client.failIncr = errors.New("conexión rechazada")
	inv := NewInvalidator(client, "views:invalidate", time.Second)

	err := inv.InvalidateService(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "views:service:1")
	assert.Empty(t, client.published)
}
