package domain

// PathStep is one hop of a connection path. The edge fields describe the
// relationship used to reach this contact from the previous one.
type PathStep struct {
	ContactID              string         `json:"contactId"`
	ContactName            string         `json:"contactName"`
	Title                  string         `json:"title,omitempty"`
	Company                string         `json:"company,omitempty"`
	ProfilePicture         string         `json:"profilePicture,omitempty"`
	RelationshipStrength   Strength       `json:"relationshipStrength,omitempty"`
	ConnectionType         ConnectionType `json:"connectionType,omitempty"`
	EdgeStrength           Strength       `json:"edgeStrength"`
	IntroductionSuccessful *bool          `json:"introductionSuccessful,omitempty"`
}

// ConnectionPath is the best introduction chain from a source contact to one
// target. The source itself is not a step; the target is the last one.
type ConnectionPath struct {
	TargetContactID   string     `json:"targetContactId"`
	TargetContactName string     `json:"targetContactName"`
	PathSteps         []PathStep `json:"pathSteps"`
	PathLength        int        `json:"pathLength"`
	Confidence        int        `json:"confidence"`
}
