package generator

// Config drives the synthetic network generator.
type Config struct {
	OwnerID            string
	NumContacts        int
	ConnectionsPer     int
	StrongShare        float64
	MediumShare        float64
	IntroductionChance float64
	IntroSuccessRate   float64
	GoalTargetChance   float64
	Seed               int64
}

// DefaultConfig returns settings that produce a few thousand contacts with
// a realistic mix of relationship strengths.
func DefaultConfig() Config {
	return Config{
		OwnerID:            "demo-user",
		NumContacts:        2000,
		ConnectionsPer:     3,
		StrongShare:        0.2,
		MediumShare:        0.45,
		IntroductionChance: 0.15,
		IntroSuccessRate:   0.7,
		GoalTargetChance:   0.02,
		Seed:               42,
	}
}
