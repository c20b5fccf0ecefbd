package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
	"github.com/cultivatehq/cultivate/backend/internal/graph"
)

func TestRepository_UpsertContact(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	node := domain.NetworkNode{
		Contact: domain.Contact{
			ID:      "c-1",
			Name:    "  Ada Lovelace ",
			Title:   "Founder",
			Company: "Analytical Engines",
		},
		RelationshipStrength: domain.StrengthStrong,
		ConnectionType:       domain.ConnectionIntroducedByMe,
		GoalTargets:          []domain.GoalTarget{{GoalID: "g-1", TargetDescription: "Seed investor"}},
		IsTargetForGoal:      &domain.GoalTarget{GoalID: "g-2"},
	}

	require.NoError(t, repo.UpsertContact(context.Background(), "owner-1", node))

	calls := mem.WriteCalls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Query, "MERGE (c:Contact {contactId: $contactId})")
	assert.Equal(t, "c-1", calls[0].Params["contactId"])

	props := calls[0].Params["props"].(map[string]any)
	assert.Equal(t, "owner-1", props["ownerId"])
	assert.Equal(t, "Ada Lovelace", props["name"])
	assert.Equal(t, "strong", props["relationshipStrength"])
	assert.Equal(t, "introduced_by_me", props["connectionType"])

	goals := calls[0].Params["goals"].([]map[string]any)
	require.Len(t, goals, 2)
	assert.Equal(t, "g-1", goals[0]["goalId"])
	assert.Equal(t, "g-2", goals[1]["goalId"])
}

func TestRepository_UpsertContactRequiresID(t *testing.T) {
	mem := graph.NewMemoryClient()
	err := New(mem).UpsertContact(context.Background(), "owner-1", domain.NetworkNode{})
	assert.Error(t, err)
	assert.Empty(t, mem.WriteCalls())
}

func TestRepository_UpsertConnection(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"connectionId": "k-1"}}})
	repo := New(mem)

	yes := true
	when := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	conn := domain.NetworkConnection{
		ID:                     "k-1",
		ContactAID:             "c-1",
		ContactBID:             "c-2",
		RelationshipType:       domain.ConnectionKnown,
		Strength:               domain.StrengthMedium,
		IntroductionDate:       &when,
		IntroductionSuccessful: &yes,
		Context:                "met at a conference",
	}
	require.NoError(t, repo.UpsertConnection(context.Background(), "owner-1", conn))

	calls := mem.WriteCalls()
	require.Len(t, calls, 1)
	assert.True(t, strings.Contains(calls[0].Query, "KNOWS"))
	props := calls[0].Params["props"].(map[string]any)
	assert.Equal(t, "medium", props["strength"])
	assert.Equal(t, true, props["introductionSuccessful"])
	assert.Equal(t, "2024-05-02T00:00:00Z", props["introductionDate"])
}

func TestRepository_UpsertConnectionMissingEndpoint(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	err := repo.UpsertConnection(context.Background(), "owner-1", domain.NetworkConnection{
		ID: "k-1", ContactAID: "c-1", ContactBID: "ghost", Strength: domain.StrengthWeak,
	})
	assert.ErrorIs(t, err, ErrEndpointNotFound)

	err = repo.UpsertConnection(context.Background(), "owner-1", domain.NetworkConnection{ID: "k-2", ContactAID: "c-1"})
	assert.Error(t, err)
}

func TestRepository_LoadSnapshot(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.HandleRead("MATCH (center:Contact", func(params map[string]any) (graph.Result, error) {
		assert.Equal(t, "c-1", params["centerId"])
		assert.Equal(t, "owner-1", params["ownerId"])
		assert.Equal(t, 50, params["maxNodes"])
		return graph.Result{Records: []graph.Record{
			{"contactId": "c-1", "name": "Me", "relationshipStrength": "strong", "connectionType": "known_connection"},
			{"contactId": "c-2", "name": "Bea", "company": "Acme", "relationshipStrength": "medium", "connectionType": "known_connection",
				"goals": []any{map[string]any{"goalId": "g-1", "targetDescription": "Partner"}}},
		}}, nil
	})
	mem.HandleRead("MATCH (a:Contact)-[k:KNOWS]->(b:Contact)", func(params map[string]any) (graph.Result, error) {
		assert.Equal(t, []string{"c-1", "c-2"}, params["ids"])
		return graph.Result{Records: []graph.Record{
			{"connectionId": "k-1", "contactAId": "c-2", "contactBId": "c-1", "strength": "weak", "relationshipType": "known_connection", "introductionSuccessful": false},
		}}, nil
	})

	snap, err := New(mem).LoadSnapshot(context.Background(), domain.SnapshotQuery{
		OwnerID: "owner-1", CenterID: "c-1", MaxHops: 3, MaxNodes: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, "Me", snap.CenterName)
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, []domain.GoalTarget{{GoalID: "g-1", TargetDescription: "Partner"}}, snap.Nodes[1].GoalTargets)
	require.Len(t, snap.Connections, 1)
	assert.Equal(t, domain.StrengthWeak, snap.Connections[0].Strength)
	require.NotNil(t, snap.Connections[0].IntroductionSuccessful)
	assert.False(t, *snap.Connections[0].IntroductionSuccessful)

	reads := mem.ReadCalls()
	require.Len(t, reads, 2)
	assert.Contains(t, reads[0].Query, "shortestPath((center)-[:KNOWS*..3]-(c))")
	assert.Contains(t, reads[0].Query, "all(n IN nodes(p) WHERE $ownerId = \"\" OR n.ownerId = $ownerId)")
}

func TestRepository_LoadSnapshotClampsHopsAndHandlesUnknownCenter(t *testing.T) {
	mem := graph.NewMemoryClient()
	snap, err := New(mem).LoadSnapshot(context.Background(), domain.SnapshotQuery{CenterID: "nobody", MaxHops: 40})
	require.NoError(t, err)

	assert.Equal(t, "nobody", snap.CenterID)
	assert.Empty(t, snap.Nodes)
	reads := mem.ReadCalls()
	require.Len(t, reads, 1)
	assert.Contains(t, reads[0].Query, "[:KNOWS*..6]")
}

func TestRepository_LoadSnapshotPropagatesErrors(t *testing.T) {
	boom := errors.New("bolt down")
	_, err := New(graph.NewMemoryClient().WithError(boom)).LoadSnapshot(context.Background(), domain.SnapshotQuery{CenterID: "c-1"})
	assert.ErrorIs(t, err, boom)

	_, err = New(graph.NewMemoryClient()).LoadSnapshot(context.Background(), domain.SnapshotQuery{})
	assert.Error(t, err)
}
