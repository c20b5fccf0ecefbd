package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivatehq/cultivate/backend/internal/config"
)

func TestRecordAccessors(t *testing.T) {
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := Record{
		"name":    "Ada",
		"count":   int64(3),
		"ok":      false,
		"started": "2024-03-01",
		"seen":    when,
		"nodes":   []any{map[string]any{"id": "c1"}, "junk", map[string]any{"id": "c2"}},
	}

	assert.Equal(t, "Ada", rec.String("name"))
	assert.Equal(t, "", rec.String("missing"))
	assert.Equal(t, 3, rec.Int("count"))
	require.NotNil(t, rec.BoolPtr("ok"))
	assert.False(t, *rec.BoolPtr("ok"))
	assert.Nil(t, rec.BoolPtr("missing"))
	assert.Equal(t, when, *rec.TimePtr("started"))
	assert.Equal(t, when, *rec.TimePtr("seen"))

	nodes := rec.Maps("nodes")
	require.Len(t, nodes, 2)
	assert.Equal(t, "c2", nodes[1].String("id"))
}

func TestMemoryClientRoutesReads(t *testing.T) {
	mem := NewMemoryClient().HandleRead("MATCH (c:Contact)", func(params map[string]any) (Result, error) {
		return Result{Records: []Record{{"id": params["id"]}}}, nil
	})
	mem.PushReadResult(Result{Records: []Record{{"queued": true}}})

	res, err := mem.ExecuteRead(context.Background(), "MATCH (c:Contact) RETURN c", map[string]any{"id": "c9"})
	require.NoError(t, err)
	assert.Equal(t, "c9", res.Records[0].String("id"))

	res, err = mem.ExecuteRead(context.Background(), "RETURN 1", nil)
	require.NoError(t, err)
	assert.Equal(t, true, res.Records[0]["queued"])
	assert.Len(t, mem.ReadCalls(), 2)
}

func TestMemoryClientErrors(t *testing.T) {
	boom := errors.New("boom")
	mem := NewMemoryClient().WithError(boom).WithConnectivityError(boom)

	_, err := mem.ExecuteWrite(context.Background(), "CREATE ()", nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, mem.VerifyConnectivity(context.Background()), boom)
	assert.Empty(t, mem.WriteCalls())

	require.NoError(t, mem.Close(context.Background()))
	assert.True(t, mem.Closed())
}

func TestNewNeo4jClientRequiresURI(t *testing.T) {
	_, err := NewNeo4jClient(context.Background(), OptionsFromConfig(config.GraphConfig{}))
	assert.ErrorIs(t, err, ErrMissingURI)
}
