package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
	"github.com/cultivatehq/cultivate/backend/internal/service"
)

// Generator produces a synthetic contact network shaped like the data the
// ingestion endpoints accept.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.OwnerID == "" {
		cfg.OwnerID = def.OwnerID
	}
	if cfg.NumContacts < 2 {
		cfg.NumContacts = def.NumContacts
	}
	if cfg.ConnectionsPer <= 0 {
		cfg.ConnectionsPer = def.ConnectionsPer
	}
	if cfg.StrongShare <= 0 {
		cfg.StrongShare = def.StrongShare
	}
	if cfg.MediumShare <= 0 {
		cfg.MediumShare = def.MediumShare
	}
	if cfg.IntroductionChance < 0 {
		cfg.IntroductionChance = 0
	}
	if cfg.IntroSuccessRate <= 0 {
		cfg.IntroSuccessRate = def.IntroSuccessRate
	}
	if cfg.GoalTargetChance < 0 {
		cfg.GoalTargetChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises contacts and connections. The first contact is the
// owner's own record and every later contact links to at least one earlier
// one, so the whole network is reachable from it. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (service.Dataset, error) {
	contacts := make([]service.ContactInput, g.cfg.NumContacts)
	now := time.Now().UTC().Truncate(24 * time.Hour)

	for i := range contacts {
		if err := ctx.Err(); err != nil {
			return service.Dataset{}, err
		}

		contact := service.ContactInput{
			OwnerID: g.cfg.OwnerID,
			ID:      fmt.Sprintf("CT-%06d", i),
			Name:    g.randomFullName(),
			Title:   g.pick(g.nameFragments.titles),
			Company: g.pick(g.nameFragments.companies),
		}
		if i == 0 {
			contact.Name = "You"
			contact.Title = ""
			contact.Company = ""
		} else {
			contact.RelationshipStrength = string(g.randomStrength())
			contact.ConnectionType = string(g.randomConnectionType())
			if g.rand.Float64() < g.cfg.GoalTargetChance {
				contact.ConnectionType = string(domain.ConnectionTargetConnection)
				contact.GoalTargets = []domain.GoalTarget{{
					GoalID:            g.newID(),
					TargetDescription: g.pick(g.nameFragments.goals),
				}}
			}
		}
		contacts[i] = contact
	}

	seen := make(map[[2]int]struct{}, g.cfg.NumContacts*g.cfg.ConnectionsPer)
	connections := make([]service.ConnectionInput, 0, g.cfg.NumContacts*g.cfg.ConnectionsPer)
	for i := 1; i < len(contacts); i++ {
		if err := ctx.Err(); err != nil {
			return service.Dataset{}, err
		}

		links := 1 + g.rand.Intn(g.cfg.ConnectionsPer)
		for l := 0; l < links; l++ {
			j := g.rand.Intn(i)
			if l > 0 {
				// Later links may point forward too, giving the graph cycles.
				j = g.rand.Intn(len(contacts))
			}
			if j == i {
				continue
			}
			key := [2]int{min(i, j), max(i, j)}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			connections = append(connections, g.connection(contacts[i], contacts[j], now))
		}
	}

	return service.Dataset{Contacts: contacts, Connections: connections}, nil
}

func (g *Generator) connection(a, b service.ContactInput, now time.Time) service.ConnectionInput {
	conn := service.ConnectionInput{
		OwnerID:          g.cfg.OwnerID,
		ID:               g.newID(),
		ContactAID:       a.ID,
		ContactBID:       b.ID,
		RelationshipType: string(domain.ConnectionKnown),
		Strength:         string(g.randomStrength()),
		Context:          g.pick(g.nameFragments.contexts),
	}
	if g.rand.Float64() < g.cfg.IntroductionChance {
		date := now.Add(-time.Duration(g.rand.Intn(720)) * 24 * time.Hour)
		ok := g.rand.Float64() < g.cfg.IntroSuccessRate
		conn.RelationshipType = string(domain.ConnectionIntroducedByMe)
		conn.IntroductionDate = &date
		conn.IntroductionSuccessful = &ok
	}
	return conn
}

// newID draws a UUID from the seeded source so runs are reproducible.
func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (g *Generator) randomStrength() domain.Strength {
	r := g.rand.Float64()
	switch {
	case r < g.cfg.StrongShare:
		return domain.StrengthStrong
	case r < g.cfg.StrongShare+g.cfg.MediumShare:
		return domain.StrengthMedium
	default:
		return domain.StrengthWeak
	}
}

func (g *Generator) randomConnectionType() domain.ConnectionType {
	if g.rand.Float64() < g.cfg.IntroductionChance {
		return domain.ConnectionIntroducedByMe
	}
	return domain.ConnectionKnown
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.pick(g.nameFragments.first), g.pick(g.nameFragments.last))
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

// PathRequest turns a dataset into a path calculation request centred on
// its first contact and aimed at every goal target.
func PathRequest(ds service.Dataset) (service.PathRequest, error) {
	if len(ds.Contacts) == 0 {
		return service.PathRequest{}, fmt.Errorf("dataset has no contacts")
	}

	req := service.PathRequest{
		SourceContactID: ds.Contacts[0].ID,
		SourceName:      ds.Contacts[0].Name,
		Nodes:           make([]domain.NetworkNode, 0, len(ds.Contacts)),
		Edges:           make([]domain.NetworkConnection, 0, len(ds.Connections)),
	}
	for _, c := range ds.Contacts {
		node := domain.NetworkNode{
			Contact: domain.Contact{
				ID:             c.ID,
				Name:           c.Name,
				Title:          c.Title,
				Company:        c.Company,
				ProfilePicture: c.ProfilePicture,
			},
			RelationshipStrength: domain.Strength(c.RelationshipStrength),
			ConnectionType:       domain.ConnectionType(c.ConnectionType),
			GoalTargets:          c.GoalTargets,
			IsTargetForGoal:      c.IsTargetForGoal,
		}
		if len(node.Targets()) > 0 {
			req.TargetContactIDs = append(req.TargetContactIDs, c.ID)
		}
		req.Nodes = append(req.Nodes, node)
	}
	for _, c := range ds.Connections {
		strength, err := domain.ParseStrength(c.Strength)
		if err != nil {
			return service.PathRequest{}, fmt.Errorf("connection %s: %w", c.ID, err)
		}
		req.Edges = append(req.Edges, domain.NetworkConnection{
			ID:                     c.ID,
			ContactAID:             c.ContactAID,
			ContactBID:             c.ContactBID,
			RelationshipType:       domain.ConnectionType(c.RelationshipType),
			Strength:               strength,
			IntroductionDate:       c.IntroductionDate,
			IntroductionSuccessful: c.IntroductionSuccessful,
			Context:                c.Context,
		})
	}
	return req, nil
}

type nameFragments struct {
	first     []string
	last      []string
	titles    []string
	companies []string
	contexts  []string
	goals     []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:     []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:      []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		titles:    []string{"Founder", "CTO", "Partner", "Head of Product", "Engineering Manager", "Principal", "VP Sales", "Designer"},
		companies: []string{"Northwind", "Globex", "Initech", "Umbrella Ventures", "Hooli", "Stark Labs", "Acme Capital"},
		contexts:  []string{"Former colleagues", "Met at a conference", "University friends", "Same accelerator batch", "Board members together"},
		goals:     []string{"Raise a seed round", "Hire a design lead", "Find a channel partner", "Meet a potential advisor"},
	}
}
