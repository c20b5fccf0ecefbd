package domain

// Contact is a person in the owner's network.
type Contact struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title,omitempty"`
	Company        string `json:"company,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// ContactDetails holds optional display metadata looked up per contact id.
type ContactDetails struct {
	Title          string `json:"title,omitempty"`
	Company        string `json:"company,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// GoalTarget marks a contact as the person a goal is trying to reach.
type GoalTarget struct {
	GoalID            string `json:"goalId"`
	TargetDescription string `json:"targetDescription,omitempty"`
}

// NetworkNode is a contact enriched with its relationship to the center contact.
type NetworkNode struct {
	Contact
	RelationshipStrength Strength       `json:"relationshipStrength,omitempty"`
	ConnectionType       ConnectionType `json:"connectionType,omitempty"`
	GoalTargets          []GoalTarget   `json:"goalTargets,omitempty"`
	// IsTargetForGoal is the single-annotation shape sent by the web client.
	IsTargetForGoal *GoalTarget `json:"isTargetForGoal,omitempty"`
}

// Targets returns every goal annotation on the node, folding IsTargetForGoal
// into the list when it is not already present.
func (n NetworkNode) Targets() []GoalTarget {
	targets := append([]GoalTarget(nil), n.GoalTargets...)
	if n.IsTargetForGoal == nil {
		return targets
	}
	for _, t := range targets {
		if t.GoalID == n.IsTargetForGoal.GoalID {
			return targets
		}
	}
	return append(targets, *n.IsTargetForGoal)
}
