package network

import (
	"fmt"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

// CalculateConnectionPaths builds the graph for sourceID and returns the best
// path to every reachable target, in the order targets were given.
func CalculateConnectionPaths(sourceID string, targetIDs []string, nodes []domain.NetworkNode, edges []domain.NetworkConnection, details map[string]domain.ContactDetails) ([]domain.ConnectionPath, error) {
	g, err := Build(sourceID, nodes, edges, details)
	if err != nil {
		return nil, err
	}
	return g.ConnectionPaths(targetIDs)
}

// ConnectionPaths returns one path per reachable target. Targets equal to the
// source, unreachable targets and repeated ids are left out. An empty target
// id is a contract violation.
func (g *Graph) ConnectionPaths(targetIDs []string) ([]domain.ConnectionPath, error) {
	for i, id := range targetIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: target %d has no id", ErrInvalidInput, i)
		}
	}

	results := make([]domain.ConnectionPath, 0, len(targetIDs))
	if len(targetIDs) == 0 {
		return results, nil
	}

	order, preds := g.shortestPathDAG()
	bands := make(map[int]map[string]*candidate, len(domain.AllStrengths()))

	seen := make(map[string]struct{}, len(targetIDs))
	for _, target := range targetIDs {
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		if target == g.sourceID {
			continue
		}

		best := g.bestPath(target, order, preds, bands)
		if best == nil {
			continue
		}
		results = append(results, g.toConnectionPath(target, best))
	}
	return results, nil
}

type hop struct {
	from string
	link Link
}

// shortestPathDAG runs a BFS from the source. order holds every reached
// contact in non-decreasing distance; preds keeps, for each contact, every
// link that reaches it from the previous BFS layer.
func (g *Graph) shortestPathDAG() ([]string, map[string][]hop) {
	dist := map[string]int{g.sourceID: 0}
	order := []string{g.sourceID}
	preds := make(map[string][]hop)

	queue := []string{g.sourceID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, link := range g.adjacency[cur] {
			next := link.NeighborID
			d, seen := dist[next]
			if !seen {
				d = dist[cur] + 1
				dist[next] = d
				queue = append(queue, next)
				order = append(order, next)
			}
			if d == dist[cur]+1 {
				preds[next] = append(preds[next], hop{from: cur, link: link})
			}
		}
	}
	return order, preds
}

// bestPath picks, among shortest paths to target, the one with the strongest
// weakest link. Bands are computed lazily, strongest first, and shared
// between targets of the same call.
func (g *Graph) bestPath(target string, order []string, preds map[string][]hop, bands map[int]map[string]*candidate) *candidate {
	strengths := domain.AllStrengths()
	for i := len(strengths) - 1; i >= 0; i-- {
		floor := strengths[i].Rank()
		band, ok := bands[floor]
		if !ok {
			band = g.band(floor, order, preds)
			bands[floor] = band
		}
		if c, ok := band[target]; ok {
			return c
		}
	}
	return nil
}

// band computes the best shortest path to every contact using only links of
// at least the given strength rank.
func (g *Graph) band(floor int, order []string, preds map[string][]hop) map[string]*candidate {
	best := map[string]*candidate{g.sourceID: {}}
	for _, id := range order[1:] {
		var chosen *candidate
		for _, h := range preds[id] {
			if h.link.Strength.Rank() < floor {
				continue
			}
			prev, ok := best[h.from]
			if !ok {
				continue
			}
			c := prev.extend(id, h.link)
			if chosen == nil || c.betterThan(chosen) {
				chosen = c
			}
		}
		if chosen != nil {
			best[id] = chosen
		}
	}
	return best
}

func (g *Graph) toConnectionPath(target string, c *candidate) domain.ConnectionPath {
	steps := make([]domain.PathStep, len(c.ids))
	for i, id := range c.ids {
		info := g.contacts[id]
		link := c.links[i]
		steps[i] = domain.PathStep{
			ContactID:              id,
			ContactName:            info.Name,
			Title:                  info.Title,
			Company:                info.Company,
			ProfilePicture:         info.ProfilePicture,
			RelationshipStrength:   info.RelationshipStrength,
			ConnectionType:         info.ConnectionType,
			EdgeStrength:           link.Strength,
			IntroductionSuccessful: copyBool(link.IntroductionSuccessful),
		}
	}
	return domain.ConnectionPath{
		TargetContactID:   target,
		TargetContactName: g.contacts[target].Name,
		PathSteps:         steps,
		PathLength:        len(steps),
		Confidence:        Confidence(steps),
	}
}

// candidate is a path from the source, excluding the source itself.
type candidate struct {
	ids       []string
	links     []Link
	successes int
	failures  int
	rankSum   int
}

func (c *candidate) extend(id string, link Link) *candidate {
	next := &candidate{
		ids:       make([]string, len(c.ids), len(c.ids)+1),
		links:     make([]Link, len(c.links), len(c.links)+1),
		successes: c.successes,
		failures:  c.failures,
		rankSum:   c.rankSum + link.Strength.Rank(),
	}
	copy(next.ids, c.ids)
	copy(next.links, c.links)
	next.ids = append(next.ids, id)
	next.links = append(next.links, link)
	if link.IntroductionSuccessful != nil {
		if *link.IntroductionSuccessful {
			next.successes++
		} else {
			next.failures++
		}
	}
	return next
}

// betterThan orders paths of equal length and equal weakest link: more
// successful introductions, then the smaller id sequence, then stronger and
// less failed links for parallel relationships between the same contacts.
func (c *candidate) betterThan(other *candidate) bool {
	if c.successes != other.successes {
		return c.successes > other.successes
	}
	for i := range c.ids {
		if c.ids[i] != other.ids[i] {
			return c.ids[i] < other.ids[i]
		}
	}
	if c.rankSum != other.rankSum {
		return c.rankSum > other.rankSum
	}
	return c.failures < other.failures
}
