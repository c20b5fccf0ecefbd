package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivatehq/cultivate/backend/internal/config"
	"github.com/cultivatehq/cultivate/backend/internal/domain"
	"github.com/cultivatehq/cultivate/backend/internal/metrics"
)

type countingSource struct {
	calls    int
	snapshot domain.NetworkSnapshot
	err      error
}

func (s *countingSource) LoadSnapshot(_ context.Context, q domain.SnapshotQuery) (domain.NetworkSnapshot, error) {
	s.calls++
	if s.err != nil {
		return domain.NetworkSnapshot{}, s.err
	}
	snap := s.snapshot
	snap.CenterID = q.CenterID
	return snap, nil
}

func setupTestRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func sampleSnapshot() domain.NetworkSnapshot {
	yes := true
	return domain.NetworkSnapshot{
		CenterName: "Me",
		Nodes:      []domain.NetworkNode{{Contact: domain.Contact{ID: "bo", Name: "Bo"}, RelationshipStrength: domain.StrengthStrong}},
		Connections: []domain.NetworkConnection{
			{ID: "k1", ContactAID: "me", ContactBID: "bo", Strength: domain.StrengthStrong, IntroductionSuccessful: &yes},
		},
	}
}

func TestSnapshotCache_ReadThrough(t *testing.T) {
	client, mr := setupTestRedisClient(t)
	source := &countingSource{snapshot: sampleSnapshot()}
	c := New(client, source, WithTTL(time.Minute), WithMetrics(metrics.New()))
	q := domain.SnapshotQuery{OwnerID: "u1", CenterID: "me", MaxHops: 3, MaxNodes: 100}

	first, err := c.LoadSnapshot(context.Background(), q)
	require.NoError(t, err)
	second, err := c.LoadSnapshot(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "cultivate:snapshot:u1:me:3:100", c.Key(q))
	assert.True(t, mr.Exists(c.Key(q)))
	assert.Equal(t, time.Minute, mr.TTL(c.Key(q)))

	mr.FastForward(2 * time.Minute)
	_, err = c.LoadSnapshot(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestSnapshotCache_SourceErrorIsNotCached(t *testing.T) {
	client, mr := setupTestRedisClient(t)
	boom := errors.New("neo4j down")
	c := New(client, &countingSource{err: boom})

	_, err := c.LoadSnapshot(context.Background(), domain.SnapshotQuery{CenterID: "me"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mr.Keys())
}

func TestSnapshotCache_RedisOutageFallsBackToSource(t *testing.T) {
	client, mr := setupTestRedisClient(t)
	source := &countingSource{snapshot: sampleSnapshot()}
	c := New(client, source)
	mr.Close()

	snap, err := c.LoadSnapshot(context.Background(), domain.SnapshotQuery{CenterID: "me"})
	require.NoError(t, err)
	assert.Equal(t, "me", snap.CenterID)
	assert.Equal(t, 1, source.calls)
}

func TestSnapshotCache_CorruptEntryIsReplaced(t *testing.T) {
	client, mr := setupTestRedisClient(t)
	source := &countingSource{snapshot: sampleSnapshot()}
	c := New(client, source)
	q := domain.SnapshotQuery{CenterID: "me"}
	require.NoError(t, mr.Set(c.Key(q), "{not json"))

	snap, err := c.LoadSnapshot(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 1)
	assert.Equal(t, 1, source.calls)
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	client, mr := setupTestRedisClient(t)
	c := New(client, &countingSource{snapshot: sampleSnapshot()}, WithPrefix("test"))
	ctx := context.Background()

	for _, center := range []string{"me", "bo"} {
		_, err := c.LoadSnapshot(ctx, domain.SnapshotQuery{OwnerID: "u1", CenterID: center})
		require.NoError(t, err)
	}
	_, err := c.LoadSnapshot(ctx, domain.SnapshotQuery{OwnerID: "u2", CenterID: "me"})
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 3)

	require.NoError(t, c.Invalidate(ctx, "u1"))
	assert.Equal(t, []string{"test:u2:me:0:0"}, mr.Keys())
}

func TestNewClientFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewClient(ctx, config.CacheConfig{Addr: addr})
	assert.Error(t, err)
}
