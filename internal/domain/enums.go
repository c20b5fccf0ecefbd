package domain

import (
	"fmt"
	"strings"
)

// Strength is the qualitative weight of a relationship.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

type strengthInfo struct {
	rank  int
	label string
}

var strengthTable = map[Strength]strengthInfo{
	StrengthWeak:   {rank: 1, label: "Weak"},
	StrengthMedium: {rank: 2, label: "Medium"},
	StrengthStrong: {rank: 3, label: "Strong"},
}

// AllStrengths lists every strength from weakest to strongest.
func AllStrengths() []Strength {
	return []Strength{StrengthWeak, StrengthMedium, StrengthStrong}
}

// ParseStrength maps a raw value onto a Strength. Matching ignores case and
// surrounding whitespace; anything outside the table is rejected.
func ParseStrength(raw string) (Strength, error) {
	s := Strength(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := strengthTable[s]; !ok {
		return "", fmt.Errorf("unknown relationship strength %q", raw)
	}
	return s, nil
}

// IsValid reports whether s is one of the known strengths.
func (s Strength) IsValid() bool {
	_, ok := strengthTable[s]
	return ok
}

// Rank orders strengths: weak=1, medium=2, strong=3. Unknown values rank 0.
func (s Strength) Rank() int {
	return strengthTable[s].rank
}

// Label is the display label used by the network view.
func (s Strength) Label() string {
	return strengthTable[s].label
}

func (s Strength) String() string {
	return string(s)
}

// ConnectionType describes how a contact relates to the center of the network.
// Edges reuse the same vocabulary for their relationship_type.
type ConnectionType string

const (
	ConnectionIntroducedByMe   ConnectionType = "introduced_by_me"
	ConnectionKnown            ConnectionType = "known_connection"
	ConnectionTargetConnection ConnectionType = "target_connection"
)

var connectionTypeLabels = map[ConnectionType]string{
	ConnectionIntroducedByMe:   "Introduced by me",
	ConnectionKnown:            "Known connection",
	ConnectionTargetConnection: "Target connection",
}

// AllConnectionTypes lists every connection type.
func AllConnectionTypes() []ConnectionType {
	return []ConnectionType{ConnectionIntroducedByMe, ConnectionKnown, ConnectionTargetConnection}
}

// ParseConnectionType maps a raw value onto a ConnectionType.
func ParseConnectionType(raw string) (ConnectionType, error) {
	c := ConnectionType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := connectionTypeLabels[c]; !ok {
		return "", fmt.Errorf("unknown connection type %q", raw)
	}
	return c, nil
}

// IsValid reports whether c is one of the known connection types.
func (c ConnectionType) IsValid() bool {
	_, ok := connectionTypeLabels[c]
	return ok
}

// Label is the display label used by the network view.
func (c ConnectionType) Label() string {
	return connectionTypeLabels[c]
}

func (c ConnectionType) String() string {
	return string(c)
}
