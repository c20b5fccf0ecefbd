package service

import (
	"time"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

// PathRequest asks for paths over a caller-supplied snapshot.
type PathRequest struct {
	SourceContactID  string                           `json:"sourceContactId"`
	SourceName       string                           `json:"sourceContactName,omitempty"`
	TargetContactIDs []string                         `json:"targetContactIds"`
	Nodes            []domain.NetworkNode             `json:"nodes"`
	Edges            []domain.NetworkConnection       `json:"edges"`
	ContactDetails   map[string]domain.ContactDetails `json:"contactDetails,omitempty"`
}

// ContactPathsRequest asks for paths from a stored contact. When TargetIDs
// is empty every goal target in the loaded snapshot is used.
type ContactPathsRequest struct {
	OwnerID   string
	ContactID string
	TargetIDs []string
	MaxHops   int
}

// PathResult is returned by both path operations.
type PathResult struct {
	SourceContactID    string                  `json:"sourceContactId"`
	Paths              []domain.ConnectionPath `json:"paths"`
	SkippedConnections int                     `json:"skippedConnections"`
}

// ContactInput is the inbound payload for a contact upsert. Enum fields are
// raw strings and are validated by the service.
type ContactInput struct {
	OwnerID              string              `json:"ownerId"`
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Title                string              `json:"title,omitempty"`
	Company              string              `json:"company,omitempty"`
	ProfilePicture       string              `json:"profilePicture,omitempty"`
	RelationshipStrength string              `json:"relationshipStrength,omitempty"`
	ConnectionType       string              `json:"connectionType,omitempty"`
	GoalTargets          []domain.GoalTarget `json:"goalTargets,omitempty"`
	IsTargetForGoal      *domain.GoalTarget  `json:"isTargetForGoal,omitempty"`
}

// ConnectionInput is the inbound payload for a connection upsert. An empty
// ID is replaced by a generated one.
type ConnectionInput struct {
	OwnerID                string     `json:"ownerId"`
	ID                     string     `json:"id,omitempty"`
	ContactAID             string     `json:"contact_a_id"`
	ContactBID             string     `json:"contact_b_id"`
	RelationshipType       string     `json:"relationship_type,omitempty"`
	Strength               string     `json:"strength"`
	IntroductionDate       *time.Time `json:"introduction_date,omitempty"`
	IntroductionSuccessful *bool      `json:"introduction_successful,omitempty"`
	Context                string     `json:"context,omitempty"`
}

// Dataset is a batch of contacts and connections for bulk ingestion.
type Dataset struct {
	Contacts    []ContactInput    `json:"contacts"`
	Connections []ConnectionInput `json:"connections"`
}
