// Package supabase loads network snapshots from the hosted CRM tables
// through PostgREST.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"golang.org/x/sync/errgroup"

	"github.com/cultivatehq/cultivate/backend/internal/config"
	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

const (
	contactsTable     = "contacts"
	connectionsTable  = "network_connections"
	goalContactsTable = "goal_contacts"
)

// ErrNotConfigured indicates the Supabase URL or key is missing.
var ErrNotConfigured = errors.New("supabase url and api key are required")

// Filter is an equality predicate on a column.
type Filter struct {
	Column string
	Value  string
}

// Querier selects rows from a table and returns the raw JSON array.
type Querier interface {
	Select(ctx context.Context, table, columns string, filters ...Filter) ([]byte, error)
}

type clientQuerier struct {
	client *supabase.Client
}

// NewQuerier builds a PostgREST-backed Querier.
func NewQuerier(cfg config.SupabaseConfig) (Querier, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return &clientQuerier{client: client}, nil
}

func (q *clientQuerier) Select(ctx context.Context, table, columns string, filters ...Filter) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := q.client.From(table).Select(columns, "", false)
	for _, f := range filters {
		query = query.Eq(f.Column, f.Value)
	}
	query = query.Order("id", &postgrest.OrderOpts{Ascending: true})

	resp, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return resp, nil
}

// Source implements service.SnapshotSource over the contacts,
// network_connections and goal_contacts tables.
type Source struct {
	q Querier
}

// NewSource wraps a Querier.
func NewSource(q Querier) *Source {
	return &Source{q: q}
}

type contactRow struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Title                *string `json:"title"`
	Company              *string `json:"company"`
	ProfilePicture       *string `json:"profile_picture"`
	RelationshipStrength *string `json:"relationship_strength"`
	ConnectionType       *string `json:"connection_type"`
}

type connectionRow struct {
	ID                     string  `json:"id"`
	ContactAID             string  `json:"contact_a_id"`
	ContactBID             string  `json:"contact_b_id"`
	RelationshipType       *string `json:"relationship_type"`
	Strength               string  `json:"strength"`
	IntroductionDate       *string `json:"introduction_date"`
	IntroductionSuccessful *bool   `json:"introduction_successful"`
	Context                *string `json:"connection_context"`
}

type goalContactRow struct {
	GoalID    string  `json:"goal_id"`
	ContactID string  `json:"contact_id"`
	Notes     *string `json:"notes"`
}

// LoadSnapshot fetches the owner's contacts, connections and goal targets
// concurrently and trims the result to the contacts within q.MaxHops of the
// center, nearest first, capped at q.MaxNodes.
func (s *Source) LoadSnapshot(ctx context.Context, q domain.SnapshotQuery) (domain.NetworkSnapshot, error) {
	var owner []Filter
	if q.OwnerID != "" {
		owner = []Filter{{Column: "user_id", Value: q.OwnerID}}
	}

	var (
		contacts    []contactRow
		connections []connectionRow
		goals       []goalContactRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.selectInto(gctx, contactsTable, "id,name,title,company,profile_picture,relationship_strength,connection_type", &contacts, owner...)
	})
	g.Go(func() error {
		return s.selectInto(gctx, connectionsTable, "id,contact_a_id,contact_b_id,relationship_type,strength,introduction_date,introduction_successful,connection_context", &connections, owner...)
	})
	g.Go(func() error {
		filters := append([]Filter{{Column: "relationship_type", Value: "target"}}, owner...)
		return s.selectInto(gctx, goalContactsTable, "goal_id,contact_id,notes", &goals, filters...)
	})
	if err := g.Wait(); err != nil {
		return domain.NetworkSnapshot{}, err
	}

	targets := make(map[string][]domain.GoalTarget)
	for _, row := range goals {
		targets[row.ContactID] = append(targets[row.ContactID], domain.GoalTarget{
			GoalID:            row.GoalID,
			TargetDescription: deref(row.Notes),
		})
	}

	snapshot := domain.NetworkSnapshot{CenterID: q.CenterID}
	for _, row := range contacts {
		node := domain.NetworkNode{
			Contact: domain.Contact{
				ID:             row.ID,
				Name:           row.Name,
				Title:          deref(row.Title),
				Company:        deref(row.Company),
				ProfilePicture: deref(row.ProfilePicture),
			},
			RelationshipStrength: domain.Strength(deref(row.RelationshipStrength)),
			ConnectionType:       domain.ConnectionType(deref(row.ConnectionType)),
			GoalTargets:          targets[row.ID],
		}
		if row.ID == q.CenterID {
			snapshot.CenterName = row.Name
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
	}
	for _, row := range connections {
		snapshot.Connections = append(snapshot.Connections, domain.NetworkConnection{
			ID:                     row.ID,
			ContactAID:             row.ContactAID,
			ContactBID:             row.ContactBID,
			RelationshipType:       domain.ConnectionType(deref(row.RelationshipType)),
			Strength:               domain.Strength(row.Strength),
			IntroductionDate:       parseDate(row.IntroductionDate),
			IntroductionSuccessful: row.IntroductionSuccessful,
			Context:                deref(row.Context),
		})
	}

	return Scope(snapshot, q.MaxHops, q.MaxNodes), nil
}

func (s *Source) selectInto(ctx context.Context, table, columns string, dest any, filters ...Filter) error {
	body, err := s.q.Select(ctx, table, columns, filters...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// Scope keeps the center, the contacts within maxHops connections of it
// (nearest first, ties by id, at most maxNodes besides the center) and the
// connections among them. Non-positive limits disable the respective bound.
// A center that appears nowhere yields an empty snapshot.
func Scope(s domain.NetworkSnapshot, maxHops, maxNodes int) domain.NetworkSnapshot {
	adjacency := make(map[string][]string)
	for _, c := range s.Connections {
		adjacency[c.ContactAID] = append(adjacency[c.ContactAID], c.ContactBID)
		adjacency[c.ContactBID] = append(adjacency[c.ContactBID], c.ContactAID)
	}

	dist := map[string]int{s.CenterID: 0}
	frontier := []string{s.CenterID}
	var reached []string
	for depth := 1; len(frontier) > 0 && (maxHops <= 0 || depth <= maxHops); depth++ {
		var next []string
		for _, id := range frontier {
			for _, n := range adjacency[id] {
				if _, seen := dist[n]; seen {
					continue
				}
				dist[n] = depth
				next = append(next, n)
			}
		}
		sort.Strings(next)
		reached = append(reached, next...)
		frontier = next
	}
	if maxNodes > 0 && len(reached) > maxNodes {
		reached = reached[:maxNodes]
	}

	keep := map[string]bool{s.CenterID: true}
	for _, id := range reached {
		keep[id] = true
	}

	out := domain.NetworkSnapshot{
		CenterID:   s.CenterID,
		CenterName: s.CenterName,
		Details:    s.Details,
	}
	centerKnown := false
	for _, n := range s.Nodes {
		if n.ID == s.CenterID {
			centerKnown = true
		}
		if keep[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	if !centerKnown && len(adjacency[s.CenterID]) == 0 {
		return domain.NetworkSnapshot{CenterID: s.CenterID}
	}
	for _, c := range s.Connections {
		if keep[c.ContactAID] && keep[c.ContactBID] {
			out.Connections = append(out.Connections, c)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseDate(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t
		}
	}
	return nil
}
