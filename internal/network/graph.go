// Package network computes introduction paths through a contact relationship
// graph. Everything here is pure: callers hand in a snapshot and get fresh
// values back with no references into their data.
package network

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

// ErrInvalidInput marks a caller contract violation such as a node without an
// id or an edge without endpoints.
var ErrInvalidInput = errors.New("invalid network input")

// Link is one direction of an undirected relationship.
type Link struct {
	ConnectionID           string
	NeighborID             string
	Strength               domain.Strength
	RelationshipType       domain.ConnectionType
	IntroductionSuccessful *bool
}

// ContactInfo is the display metadata kept for each contact.
type ContactInfo struct {
	Name                 string
	Title                string
	Company              string
	ProfilePicture       string
	RelationshipStrength domain.Strength
	ConnectionType       domain.ConnectionType
}

// SkippedEdge records a connection that Build ignored.
type SkippedEdge struct {
	Index        int
	ConnectionID string
	Reason       string
}

// Graph is an adjacency view of a network snapshot rooted at a source contact.
type Graph struct {
	sourceID  string
	adjacency map[string][]Link
	contacts  map[string]ContactInfo
	skipped   []SkippedEdge
}

// Build assembles the adjacency structure for sourceID. Edges pointing at ids
// that are neither nodes nor the source, and self-loops, are skipped and
// reported through Skipped, as are edges whose strength or relationship type
// does not parse. Unknown node enum values are dropped. Missing ids are
// contract violations and return ErrInvalidInput.
func Build(sourceID string, nodes []domain.NetworkNode, edges []domain.NetworkConnection, details map[string]domain.ContactDetails) (*Graph, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source contact id is required", ErrInvalidInput)
	}

	g := &Graph{
		sourceID:  sourceID,
		adjacency: make(map[string][]Link, len(nodes)+1),
		contacts:  make(map[string]ContactInfo, len(nodes)+1),
	}

	for i, node := range nodes {
		info, err := contactInfoFor(node, details)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrInvalidInput, i, err)
		}
		if _, exists := g.contacts[node.ID]; exists {
			continue
		}
		g.contacts[node.ID] = info
	}
	if _, ok := g.contacts[sourceID]; !ok {
		g.contacts[sourceID] = ContactInfo{}
	}

	for i, edge := range edges {
		if edge.ID == "" {
			return nil, fmt.Errorf("%w: connection %d has no id", ErrInvalidInput, i)
		}
		if edge.ContactAID == "" || edge.ContactBID == "" {
			return nil, fmt.Errorf("%w: connection %s is missing an endpoint id", ErrInvalidInput, edge.ID)
		}
		strength, err := domain.ParseStrength(string(edge.Strength))
		if err != nil {
			g.skip(i, edge.ID, err.Error())
			continue
		}
		relType := edge.RelationshipType
		if relType != "" {
			if relType, err = domain.ParseConnectionType(string(relType)); err != nil {
				g.skip(i, edge.ID, err.Error())
				continue
			}
		}

		if edge.ContactAID == edge.ContactBID {
			g.skip(i, edge.ID, "self-loop")
			continue
		}
		if _, ok := g.contacts[edge.ContactAID]; !ok {
			g.skip(i, edge.ID, "unknown contact "+edge.ContactAID)
			continue
		}
		if _, ok := g.contacts[edge.ContactBID]; !ok {
			g.skip(i, edge.ID, "unknown contact "+edge.ContactBID)
			continue
		}

		g.adjacency[edge.ContactAID] = append(g.adjacency[edge.ContactAID], Link{
			ConnectionID:           edge.ID,
			NeighborID:             edge.ContactBID,
			Strength:               strength,
			RelationshipType:       relType,
			IntroductionSuccessful: copyBool(edge.IntroductionSuccessful),
		})
		g.adjacency[edge.ContactBID] = append(g.adjacency[edge.ContactBID], Link{
			ConnectionID:           edge.ID,
			NeighborID:             edge.ContactAID,
			Strength:               strength,
			RelationshipType:       relType,
			IntroductionSuccessful: copyBool(edge.IntroductionSuccessful),
		})
	}

	for id := range g.adjacency {
		links := g.adjacency[id]
		sort.SliceStable(links, func(i, j int) bool {
			if links[i].NeighborID != links[j].NeighborID {
				return links[i].NeighborID < links[j].NeighborID
			}
			return links[i].ConnectionID < links[j].ConnectionID
		})
	}

	return g, nil
}

// SourceID is the contact paths are computed from.
func (g *Graph) SourceID() string {
	return g.sourceID
}

// Neighbors returns a copy of the links leaving id, ordered by neighbor id.
func (g *Graph) Neighbors(id string) []Link {
	return append([]Link(nil), g.adjacency[id]...)
}

// Contact returns the display metadata for id.
func (g *Graph) Contact(id string) (ContactInfo, bool) {
	info, ok := g.contacts[id]
	return info, ok
}

// Skipped lists the connections Build ignored, in input order.
func (g *Graph) Skipped() []SkippedEdge {
	return append([]SkippedEdge(nil), g.skipped...)
}

// EdgeCount is the number of undirected relationships in the graph.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, links := range g.adjacency {
		total += len(links)
	}
	return total / 2
}

func (g *Graph) skip(index int, id, reason string) {
	g.skipped = append(g.skipped, SkippedEdge{Index: index, ConnectionID: id, Reason: reason})
}

func contactInfoFor(node domain.NetworkNode, details map[string]domain.ContactDetails) (ContactInfo, error) {
	if node.ID == "" {
		return ContactInfo{}, errors.New("missing contact id")
	}
	info := ContactInfo{
		Name:           node.Name,
		Title:          node.Title,
		Company:        node.Company,
		ProfilePicture: node.ProfilePicture,
	}
	if s, err := domain.ParseStrength(string(node.RelationshipStrength)); err == nil {
		info.RelationshipStrength = s
	}
	if c, err := domain.ParseConnectionType(string(node.ConnectionType)); err == nil {
		info.ConnectionType = c
	}
	if d, ok := details[node.ID]; ok {
		if d.Title != "" {
			info.Title = d.Title
		}
		if d.Company != "" {
			info.Company = d.Company
		}
		if d.ProfilePicture != "" {
			info.ProfilePicture = d.ProfilePicture
		}
	}
	return info, nil
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
