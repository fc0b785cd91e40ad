package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

func newCache(t *testing.T, ttl time.Duration) (*RedisReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisReportCache(client, ttl), mr
}

func TestRedisReportCache_RoundTrip(t *testing.T) {
	c, mr := newCache(t, 5*time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "sin instantánea")

	in := &entity.Report{
		GeneratedAt:   time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		DataGeracao:   "01/06/2025 15:00:00",
		TotalProducts: 2,
		TotalValue:    decimal.RequireFromString("250.30"),
		Entries: entity.Ranking{
			Most: []entity.RankedItem{{Item: "Seringa", Quantity: 40, UnitPrice: decimal.RequireFromString("2.50")}},
		},
		ByLocation: []entity.LocationValue{{Location: "vet", Products: 2, Quantity: 43, TotalValue: decimal.RequireFromString("250.30")}},
	}
	require.NoError(t, c.Set(ctx, in))
	assert.Equal(t, 5*time.Minute, mr.TTL(ReportKey))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.GeneratedAt.Equal(in.GeneratedAt))
	assert.Equal(t, "01/06/2025 15:00:00", got.DataGeracao)
	assert.True(t, got.TotalValue.Equal(in.TotalValue))
	require.Len(t, got.Entries.Most, 1)
	assert.Equal(t, int64(40), got.Entries.Most[0].Quantity)
	assert.Equal(t, "vet", got.ByLocation[0].Location)
}

func TestRedisReportCache_Expira(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.Report{TotalProducts: 1}))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisReportCache_DatoCorrupto(t *testing.T) {
	c, mr := newCache(t, 0)
	require.NoError(t, mr.Set(ReportKey, "{no es json"))

	_, err := c.Get(context.Background())
	assert.Error(t, err)

	require.NoError(t, c.Invalidate(context.Background()))
	assert.False(t, mr.Exists(ReportKey))
}

func TestNew_SinServidor(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = New(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
