package infra

import (
	"context"
	"io/fs"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsphere/roadsphere/internal/infra/migrations"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0", RedisOptions{})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	_, err = NewRedisClient(context.Background(), "", RedisOptions{})
	assert.Error(t, err)
	_, err = NewRedisClient(context.Background(), "http://nope", RedisOptions{})
	assert.Error(t, err)
}

func TestRedisOptionsOverrideURL(t *testing.T) {
	opt, err := redis.ParseURL("redis://localhost:6379/0?pool_size=3")
	require.NoError(t, err)

	RedisOptions{}.apply(opt)
	assert.Equal(t, 3, opt.PoolSize)

	RedisOptions{PoolSize: 20, ReadTimeout: time.Second}.apply(opt)
	assert.Equal(t, 20, opt.PoolSize)
	assert.Equal(t, time.Second, opt.ReadTimeout)
}

func TestNewPostgresPoolValidatesURL(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), "", PoolOptions{})
	assert.Error(t, err)
	_, err = NewPostgresPool(context.Background(), "://bad", PoolOptions{})
	assert.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_users.sql", "00002_otps.sql", "00003_vehicles_bookings.sql"}, names)
}
