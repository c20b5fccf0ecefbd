package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

func TestBuild_SkipsUnusableEdges(t *testing.T) {
	g, err := Build("A", nodes("B", "C"), []domain.NetworkConnection{
		edge("A", "B", domain.StrengthStrong),
		edge("B", "B", domain.StrengthWeak),
		edge("C", "ghost", domain.StrengthMedium),
		edge("B", "C", domain.StrengthMedium),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "A", g.SourceID())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []SkippedEdge{
		{Index: 1, ConnectionID: "B-B", Reason: "self-loop"},
		{Index: 2, ConnectionID: "C-ghost", Reason: "unknown contact ghost"},
	}, g.Skipped())
}

func TestBuild_SkipsEdgesWithUnknownEnums(t *testing.T) {
	mentor := node("X")
	mentor.ConnectionType = "mentor"
	mentor.RelationshipStrength = "close"

	g, err := Build("A", []domain.NetworkNode{node("B"), mentor, node("Y")}, []domain.NetworkConnection{
		edge("A", "B", domain.StrengthStrong),
		{ID: "e2", ContactAID: "X", ContactBID: "Y"},
		{ID: "e3", ContactAID: "X", ContactBID: "Y", Strength: domain.StrengthWeak, RelationshipType: "cousin"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []SkippedEdge{
		{Index: 1, ConnectionID: "e2", Reason: `unknown relationship strength ""`},
		{Index: 2, ConnectionID: "e3", Reason: `unknown connection type "cousin"`},
	}, g.Skipped())

	info, ok := g.Contact("X")
	require.True(t, ok)
	assert.Empty(t, info.ConnectionType)
	assert.Empty(t, info.RelationshipStrength)

	paths, err := g.ConnectionPaths([]string{"B"})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "B", paths[0].TargetContactID)
	assert.Equal(t, 1, paths[0].PathLength)
}

func TestBuild_NeighborsAreSortedAndUndirected(t *testing.T) {
	g, err := Build("A", nodes("B", "C", "D"), []domain.NetworkConnection{
		edge("D", "A", domain.StrengthWeak),
		edge("A", "C", domain.StrengthMedium),
		edge("B", "A", domain.StrengthStrong),
	}, nil)
	require.NoError(t, err)

	var ids []string
	for _, l := range g.Neighbors("A") {
		ids = append(ids, l.NeighborID)
	}
	assert.Equal(t, []string{"B", "C", "D"}, ids)

	back := g.Neighbors("D")
	require.Len(t, back, 1)
	assert.Equal(t, "A", back[0].NeighborID)
	assert.Equal(t, domain.StrengthWeak, back[0].Strength)
	assert.Equal(t, "D-A", back[0].ConnectionID)
}

func TestBuild_FirstDuplicateNodeWins(t *testing.T) {
	first := node("B")
	first.Name = "Bea"
	second := node("B")
	second.Name = "Bob"

	g, err := Build("A", []domain.NetworkNode{first, second}, nil, nil)
	require.NoError(t, err)

	info, ok := g.Contact("B")
	require.True(t, ok)
	assert.Equal(t, "Bea", info.Name)
}

func TestBuild_SourceWithoutNodeIsAddressable(t *testing.T) {
	g, err := Build("A", nodes("B"), []domain.NetworkConnection{edge("A", "B", domain.StrengthMedium)}, nil)
	require.NoError(t, err)

	_, ok := g.Contact("A")
	assert.True(t, ok)
	assert.Equal(t, 1, g.EdgeCount())
	assert.Empty(t, g.Skipped())
}

func TestBuild_DoesNotAliasCallerData(t *testing.T) {
	yes := true
	e := edge("A", "B", domain.StrengthStrong)
	e.IntroductionSuccessful = &yes

	g, err := Build("A", nodes("B"), []domain.NetworkConnection{e}, nil)
	require.NoError(t, err)
	yes = false

	links := g.Neighbors("A")
	require.Len(t, links, 1)
	require.NotNil(t, links[0].IntroductionSuccessful)
	assert.True(t, *links[0].IntroductionSuccessful)

	links[0].NeighborID = "mutated"
	assert.Equal(t, "B", g.Neighbors("A")[0].NeighborID)
}
