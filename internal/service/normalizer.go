package service

import (
	"regexp"
	"strings"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// normalizeIDs trims ids and drops empty entries and repeats, keeping order.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SplitIDs parses a comma separated id list such as a query parameter.
func SplitIDs(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return normalizeIDs(strings.Split(csv, ","))
}

func parseOptionalStrength(raw string) (domain.Strength, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParseStrength(raw)
}

func parseOptionalConnectionType(raw string) (domain.ConnectionType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParseConnectionType(raw)
}

// goalTargetIDs lists the snapshot contacts annotated as goal targets,
// excluding the center.
func goalTargetIDs(snapshot domain.NetworkSnapshot) []string {
	var ids []string
	for _, n := range snapshot.Nodes {
		if n.ID == snapshot.CenterID {
			continue
		}
		if len(n.Targets()) > 0 || n.ConnectionType == domain.ConnectionTargetConnection {
			ids = append(ids, n.ID)
		}
	}
	return normalizeIDs(ids)
}
