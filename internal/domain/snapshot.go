package domain

// NetworkSnapshot is an in-memory copy of the relationship graph around a
// center contact, as fetched from a backend or posted by a client. Nodes may
// include the center itself.
type NetworkSnapshot struct {
	CenterID    string                    `json:"centerId"`
	CenterName  string                    `json:"centerName,omitempty"`
	Nodes       []NetworkNode             `json:"nodes"`
	Connections []NetworkConnection       `json:"connections"`
	Details     map[string]ContactDetails `json:"contactDetails,omitempty"`
}

// SnapshotQuery scopes the graph fetched for a center contact.
type SnapshotQuery struct {
	OwnerID  string
	CenterID string
	MaxHops  int
	MaxNodes int
}

// HasContact reports whether id appears as a node or as a connection endpoint.
func (s NetworkSnapshot) HasContact(id string) bool {
	for _, n := range s.Nodes {
		if n.ID == id {
			return true
		}
	}
	for _, c := range s.Connections {
		if c.ContactAID == id || c.ContactBID == id {
			return true
		}
	}
	return false
}
