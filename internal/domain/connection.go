package domain

import "time"

// NetworkConnection is an undirected relationship between two contacts. The
// order of ContactAID and ContactBID carries no meaning.
type NetworkConnection struct {
	ID                     string         `json:"id"`
	ContactAID             string         `json:"contact_a_id"`
	ContactBID             string         `json:"contact_b_id"`
	RelationshipType       ConnectionType `json:"relationship_type,omitempty"`
	Strength               Strength       `json:"strength"`
	IntroductionDate       *time.Time     `json:"introduction_date,omitempty"`
	IntroductionSuccessful *bool          `json:"introduction_successful,omitempty"`
	Context                string         `json:"context,omitempty"`
}

// Other returns the endpoint opposite to id, or "" when id is not an endpoint.
func (c NetworkConnection) Other(id string) string {
	switch id {
	case c.ContactAID:
		return c.ContactBID
	case c.ContactBID:
		return c.ContactAID
	default:
		return ""
	}
}
