package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
	"github.com/cultivatehq/cultivate/backend/internal/graph"
)

// MaxTraversalHops bounds the variable-length KNOWS expansion used to load a
// snapshot. Deeper traversals are clamped.
const MaxTraversalHops = 6

// ErrEndpointNotFound is returned when a connection references a contact
// that has not been ingested yet.
var ErrEndpointNotFound = errors.New("connection endpoint contact not found")

// Repository encapsulates graph persistence operations for contacts and
// their relationships.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// UpsertContact ensures a contact node exists with the latest metadata and
// goal-target annotations.
func (r *Repository) UpsertContact(ctx context.Context, ownerID string, node domain.NetworkNode) error {
	if node.ID == "" {
		return errors.New("contact id is required")
	}

	params := map[string]any{
		"contactId": node.ID,
		"props":     contactProperties(ownerID, node),
		"goals":     goalParams(node.Targets()),
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertContactCypher, params); err != nil {
		return fmt.Errorf("upsert contact %s: %w", node.ID, err)
	}
	return nil
}

// UpsertConnection ensures both contacts are linked by a KNOWS relationship
// carrying the connection metadata. Both contacts must already exist.
func (r *Repository) UpsertConnection(ctx context.Context, ownerID string, conn domain.NetworkConnection) error {
	if conn.ID == "" {
		return errors.New("connection id is required")
	}
	if conn.ContactAID == "" || conn.ContactBID == "" {
		return fmt.Errorf("connection %s needs both contact ids", conn.ID)
	}

	params := map[string]any{
		"connectionId": conn.ID,
		"contactAId":   conn.ContactAID,
		"contactBId":   conn.ContactBID,
		"props":        connectionProperties(ownerID, conn),
	}

	res, err := r.client.ExecuteWrite(ctx, upsertConnectionCypher, params)
	if err != nil {
		return fmt.Errorf("upsert connection %s: %w", conn.ID, err)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("upsert connection %s: %w", conn.ID, ErrEndpointNotFound)
	}
	return nil
}

// LoadSnapshot fetches the center contact, the contacts within q.MaxHops
// KNOWS hops of it (nearest first, capped at q.MaxNodes) and every KNOWS
// relationship among them. An unknown center yields an empty snapshot.
func (r *Repository) LoadSnapshot(ctx context.Context, q domain.SnapshotQuery) (domain.NetworkSnapshot, error) {
	if q.CenterID == "" {
		return domain.NetworkSnapshot{}, errors.New("center contact id is required")
	}
	hops := q.MaxHops
	if hops <= 0 || hops > MaxTraversalHops {
		hops = MaxTraversalHops
	}

	snapshot := domain.NetworkSnapshot{CenterID: q.CenterID}

	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(snapshotContactsCypherTemplate, hops), map[string]any{
		"centerId": q.CenterID,
		"ownerId":  q.OwnerID,
		"maxNodes": q.MaxNodes,
	})
	if err != nil {
		return domain.NetworkSnapshot{}, fmt.Errorf("snapshot contacts query: %w", err)
	}
	if len(res.Records) == 0 {
		return snapshot, nil
	}

	ids := make([]string, 0, len(res.Records))
	snapshot.Nodes = make([]domain.NetworkNode, 0, len(res.Records))
	for _, record := range res.Records {
		node := nodeFromRecord(record)
		if node.ID == q.CenterID {
			snapshot.CenterName = node.Name
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
		ids = append(ids, node.ID)
	}

	res, err = r.client.ExecuteRead(ctx, snapshotConnectionsCypher, map[string]any{"ids": ids})
	if err != nil {
		return domain.NetworkSnapshot{}, fmt.Errorf("snapshot connections query: %w", err)
	}
	snapshot.Connections = make([]domain.NetworkConnection, 0, len(res.Records))
	for _, record := range res.Records {
		snapshot.Connections = append(snapshot.Connections, connectionFromRecord(record))
	}

	return snapshot, nil
}

func contactProperties(ownerID string, n domain.NetworkNode) map[string]any {
	return map[string]any{
		"ownerId":              ownerID,
		"name":                 strings.TrimSpace(n.Name),
		"title":                n.Title,
		"company":              n.Company,
		"profilePicture":       n.ProfilePicture,
		"relationshipStrength": string(n.RelationshipStrength),
		"connectionType":       string(n.ConnectionType),
		"updatedAt":            formatTime(time.Now().UTC()),
	}
}

func goalParams(targets []domain.GoalTarget) []map[string]any {
	out := make([]map[string]any, 0, len(targets))
	for _, t := range targets {
		if t.GoalID == "" {
			continue
		}
		out = append(out, map[string]any{
			"goalId":      t.GoalID,
			"description": t.TargetDescription,
		})
	}
	return out
}

func connectionProperties(ownerID string, c domain.NetworkConnection) map[string]any {
	props := map[string]any{
		"ownerId":          ownerID,
		"relationshipType": string(c.RelationshipType),
		"strength":         string(c.Strength),
		"context":          c.Context,
		"updatedAt":        formatTime(time.Now().UTC()),
	}
	if c.IntroductionDate != nil {
		props["introductionDate"] = formatTime(*c.IntroductionDate)
	}
	if c.IntroductionSuccessful != nil {
		props["introductionSuccessful"] = *c.IntroductionSuccessful
	}
	return props
}

func nodeFromRecord(record graph.Record) domain.NetworkNode {
	node := domain.NetworkNode{
		Contact: domain.Contact{
			ID:             record.String("contactId"),
			Name:           record.String("name"),
			Title:          record.String("title"),
			Company:        record.String("company"),
			ProfilePicture: record.String("profilePicture"),
		},
		RelationshipStrength: domain.Strength(record.String("relationshipStrength")),
		ConnectionType:       domain.ConnectionType(record.String("connectionType")),
	}
	for _, g := range record.Maps("goals") {
		if id := g.String("goalId"); id != "" {
			node.GoalTargets = append(node.GoalTargets, domain.GoalTarget{
				GoalID:            id,
				TargetDescription: g.String("targetDescription"),
			})
		}
	}
	return node
}

func connectionFromRecord(record graph.Record) domain.NetworkConnection {
	return domain.NetworkConnection{
		ID:                     record.String("connectionId"),
		ContactAID:             record.String("contactAId"),
		ContactBID:             record.String("contactBId"),
		RelationshipType:       domain.ConnectionType(record.String("relationshipType")),
		Strength:               domain.Strength(record.String("strength")),
		IntroductionDate:       record.TimePtr("introductionDate"),
		IntroductionSuccessful: record.BoolPtr("introductionSuccessful"),
		Context:                record.String("context"),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

const upsertContactCypher = `
MERGE (c:Contact {contactId: $contactId})
SET c += $props
WITH c
OPTIONAL MATCH (c)-[old:TARGET_OF]->(:Goal)
DELETE old
WITH DISTINCT c
FOREACH (goal IN $goals |
	MERGE (g:Goal {goalId: goal.goalId})
	MERGE (c)-[t:TARGET_OF]->(g)
	SET t.description = goal.description
)
RETURN c.contactId AS contactId
`

const upsertConnectionCypher = `
MATCH (a:Contact {contactId: $contactAId})
MATCH (b:Contact {contactId: $contactBId})
OPTIONAL MATCH ()-[stale:KNOWS {connectionId: $connectionId}]-()
DELETE stale
WITH DISTINCT a, b
MERGE (a)-[k:KNOWS {connectionId: $connectionId}]->(b)
SET k += $props
RETURN k.connectionId AS connectionId
`

// The hop bound cannot be a query parameter, so it is formatted in.
const snapshotContactsCypherTemplate = `
MATCH (center:Contact {contactId: $centerId})
WHERE $ownerId = "" OR center.ownerId = $ownerId
OPTIONAL MATCH (c:Contact)
WHERE c <> center AND ($ownerId = "" OR c.ownerId = $ownerId)
OPTIONAL MATCH p = shortestPath((center)-[:KNOWS*..%d]-(c))
WHERE all(n IN nodes(p) WHERE $ownerId = "" OR n.ownerId = $ownerId)
WITH center, c, length(p) AS hops
ORDER BY hops, c.contactId
WITH center, collect(CASE WHEN hops IS NULL THEN NULL ELSE c END) AS reached
WITH [center] + CASE WHEN $maxNodes > 0 THEN reached[..$maxNodes] ELSE reached END AS contacts
UNWIND contacts AS n
OPTIONAL MATCH (n)-[t:TARGET_OF]->(g:Goal)
WITH n, collect(CASE WHEN g IS NULL THEN NULL ELSE {goalId: g.goalId, targetDescription: t.description} END) AS goals
RETURN n.contactId AS contactId,
       n.name AS name,
       n.title AS title,
       n.company AS company,
       n.profilePicture AS profilePicture,
       n.relationshipStrength AS relationshipStrength,
       n.connectionType AS connectionType,
       goals
`

const snapshotConnectionsCypher = `
MATCH (a:Contact)-[k:KNOWS]->(b:Contact)
WHERE a.contactId IN $ids AND b.contactId IN $ids
RETURN k.connectionId AS connectionId,
       a.contactId AS contactAId,
       b.contactId AS contactBId,
       k.relationshipType AS relationshipType,
       k.strength AS strength,
       k.introductionDate AS introductionDate,
       k.introductionSuccessful AS introductionSuccessful,
       k.context AS context
ORDER BY connectionId
`
