package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
	"github.com/cultivatehq/cultivate/backend/internal/logging"
	"github.com/cultivatehq/cultivate/backend/internal/metrics"
	"github.com/cultivatehq/cultivate/backend/internal/network"
)

var (
	// ErrContactNotFound is returned when the requested center contact is not
	// part of the loaded snapshot.
	ErrContactNotFound = errors.New("contact not found")
	// ErrSnapshotSourceUnavailable wraps failures of the configured snapshot source.
	ErrSnapshotSourceUnavailable = errors.New("snapshot source unavailable")
	// ErrStoreUnavailable is returned by upserts when no contact store is configured.
	ErrStoreUnavailable = errors.New("contact store not configured")
)

// ContactStore is the write side used by ingestion.
type ContactStore interface {
	UpsertContact(ctx context.Context, ownerID string, node domain.NetworkNode) error
	UpsertConnection(ctx context.Context, ownerID string, conn domain.NetworkConnection) error
}

// SnapshotSource loads the relationship graph around a center contact.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context, q domain.SnapshotQuery) (domain.NetworkSnapshot, error)
}

// SnapshotInvalidator is implemented by caching sources that must forget an
// owner's snapshots after a write.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, ownerID string) error
}

// Options tunes a NetworkService. Zero values fall back to defaults.
type Options struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	SourceName string
	MaxHops    int
	MaxNodes   int
}

const (
	defaultMaxHops  = 4
	defaultMaxNodes = 2000
)

// NetworkService computes connection paths and ingests contacts. Either
// dependency may be nil; operations needing it then fail with a sentinel error.
type NetworkService struct {
	store      ContactStore
	source     SnapshotSource
	sourceName string
	maxHops    int
	maxNodes   int
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	nowFn      func() time.Time
	newID      func() string
}

// NewNetworkService wires a service over the given store and snapshot source.
func NewNetworkService(store ContactStore, source SnapshotSource, opts Options) *NetworkService {
	s := &NetworkService{
		store:      store,
		source:     source,
		sourceName: opts.SourceName,
		maxHops:    opts.MaxHops,
		maxNodes:   opts.MaxNodes,
		logger:     logging.Component(opts.Logger, "network-service"),
		metrics:    opts.Metrics,
		tracer:     otel.Tracer("github.com/cultivatehq/cultivate/backend/internal/service"),
		nowFn:      time.Now,
		newID:      uuid.NewString,
	}
	if s.sourceName == "" {
		s.sourceName = "unknown"
	}
	if s.maxHops <= 0 {
		s.maxHops = defaultMaxHops
	}
	if s.maxNodes <= 0 {
		s.maxNodes = defaultMaxNodes
	}
	return s
}

// WithClock overrides the time provider (used primarily in tests).
func (s *NetworkService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// CalculatePaths runs the path finder over the snapshot carried by req.
func (s *NetworkService) CalculatePaths(ctx context.Context, req PathRequest) (PathResult, error) {
	ctx, span := s.tracer.Start(ctx, "network.CalculatePaths", trace.WithAttributes(
		attribute.String("source_contact_id", req.SourceContactID),
		attribute.Int("targets", len(req.TargetContactIDs)),
		attribute.Int("nodes", len(req.Nodes)),
		attribute.Int("edges", len(req.Edges)),
	))
	defer span.End()

	res, err := s.calculate(ctx, req.SourceContactID, req.TargetContactIDs, domain.NetworkSnapshot{
		CenterID:    req.SourceContactID,
		CenterName:  req.SourceName,
		Nodes:       req.Nodes,
		Connections: req.Edges,
		Details:     req.ContactDetails,
	})
	recordSpanError(span, err)
	return res, err
}

// ContactPaths loads the snapshot around req.ContactID from the configured
// source and computes paths to the requested targets.
func (s *NetworkService) ContactPaths(ctx context.Context, req ContactPathsRequest) (PathResult, error) {
	ctx, span := s.tracer.Start(ctx, "network.ContactPaths", trace.WithAttributes(
		attribute.String("contact_id", req.ContactID),
		attribute.String("owner_id", req.OwnerID),
	))
	defer span.End()

	res, err := s.contactPaths(ctx, req)
	recordSpanError(span, err)
	return res, err
}

func (s *NetworkService) contactPaths(ctx context.Context, req ContactPathsRequest) (PathResult, error) {
	contactID := sanitizeString(req.ContactID)
	if contactID == "" {
		return PathResult{}, fmt.Errorf("%w: contact id is required", network.ErrInvalidInput)
	}
	if s.source == nil {
		return PathResult{}, fmt.Errorf("%w: none configured", ErrSnapshotSourceUnavailable)
	}

	hops := req.MaxHops
	if hops <= 0 || hops > s.maxHops {
		hops = s.maxHops
	}

	snapshot, err := s.source.LoadSnapshot(ctx, domain.SnapshotQuery{
		OwnerID:  sanitizeString(req.OwnerID),
		CenterID: contactID,
		MaxHops:  hops,
		MaxNodes: s.maxNodes,
	})
	if err != nil {
		s.metrics.SnapshotLoaded(s.sourceName, "error")
		s.logger.Error("load snapshot failed", slog.String("contact_id", contactID), slog.Any("error", err))
		return PathResult{}, fmt.Errorf("%w: %v", ErrSnapshotSourceUnavailable, err)
	}
	s.metrics.SnapshotLoaded(s.sourceName, "ok")

	if !snapshot.HasContact(contactID) {
		return PathResult{}, fmt.Errorf("%w: %s", ErrContactNotFound, contactID)
	}

	targets := normalizeIDs(req.TargetIDs)
	if len(targets) == 0 {
		targets = goalTargetIDs(snapshot)
	}
	return s.calculate(ctx, contactID, targets, snapshot)
}

func (s *NetworkService) calculate(_ context.Context, sourceID string, targets []string, snapshot domain.NetworkSnapshot) (PathResult, error) {
	start := s.nowFn()

	g, err := network.Build(sourceID, snapshot.Nodes, snapshot.Connections, snapshot.Details)
	if err != nil {
		s.metrics.ObserveCalculation("invalid", s.nowFn().Sub(start), nil, 0)
		return PathResult{}, err
	}
	for _, sk := range g.Skipped() {
		s.logger.Debug("skipping connection",
			slog.String("connection_id", sk.ConnectionID),
			slog.Int("index", sk.Index),
			slog.String("reason", sk.Reason),
		)
	}

	paths, err := g.ConnectionPaths(targets)
	if err != nil {
		s.metrics.ObserveCalculation("invalid", s.nowFn().Sub(start), nil, len(g.Skipped()))
		return PathResult{}, err
	}

	lengths := make([]int, len(paths))
	for i, p := range paths {
		lengths[i] = p.PathLength
	}
	took := s.nowFn().Sub(start)
	s.metrics.ObserveCalculation("ok", took, lengths, len(g.Skipped()))
	s.logger.Debug("connection paths computed",
		slog.String("source_contact_id", g.SourceID()),
		slog.Int("targets", len(targets)),
		slog.Int("paths", len(paths)),
		slog.Int("connections", g.EdgeCount()),
		slog.Duration("took", took),
	)

	return PathResult{
		SourceContactID:    g.SourceID(),
		Paths:              paths,
		SkippedConnections: len(g.Skipped()),
	}, nil
}

// UpsertContact validates and persists a contact.
func (s *NetworkService) UpsertContact(ctx context.Context, input ContactInput) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	id := sanitizeString(input.ID)
	if id == "" {
		return fmt.Errorf("%w: contact id is required", network.ErrInvalidInput)
	}
	strength, err := parseOptionalStrength(input.RelationshipStrength)
	if err != nil {
		return fmt.Errorf("%w: contact %s: %v", network.ErrInvalidInput, id, err)
	}
	connType, err := parseOptionalConnectionType(input.ConnectionType)
	if err != nil {
		return fmt.Errorf("%w: contact %s: %v", network.ErrInvalidInput, id, err)
	}

	node := domain.NetworkNode{
		Contact: domain.Contact{
			ID:             id,
			Name:           sanitizeString(input.Name),
			Title:          sanitizeString(input.Title),
			Company:        sanitizeString(input.Company),
			ProfilePicture: sanitizeString(input.ProfilePicture),
		},
		RelationshipStrength: strength,
		ConnectionType:       connType,
		GoalTargets:          input.GoalTargets,
		IsTargetForGoal:      input.IsTargetForGoal,
	}

	owner := sanitizeString(input.OwnerID)
	err = s.store.UpsertContact(ctx, owner, node)
	s.metrics.Ingested("contact", err)
	if err != nil {
		return err
	}
	s.invalidate(ctx, owner)
	return nil
}

// UpsertConnection validates and persists a connection, returning its id.
func (s *NetworkService) UpsertConnection(ctx context.Context, input ConnectionInput) (string, error) {
	if s.store == nil {
		return "", ErrStoreUnavailable
	}
	a, b := sanitizeString(input.ContactAID), sanitizeString(input.ContactBID)
	if a == "" || b == "" {
		return "", fmt.Errorf("%w: contact_a_id and contact_b_id are required", network.ErrInvalidInput)
	}
	if a == b {
		return "", fmt.Errorf("%w: a contact cannot be connected to itself", network.ErrInvalidInput)
	}
	strength, err := domain.ParseStrength(input.Strength)
	if err != nil {
		return "", fmt.Errorf("%w: %v", network.ErrInvalidInput, err)
	}
	relType, err := parseOptionalConnectionType(input.RelationshipType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", network.ErrInvalidInput, err)
	}

	id := sanitizeString(input.ID)
	if id == "" {
		id = s.newID()
	}

	conn := domain.NetworkConnection{
		ID:                     id,
		ContactAID:             a,
		ContactBID:             b,
		RelationshipType:       relType,
		Strength:               strength,
		IntroductionDate:       input.IntroductionDate,
		IntroductionSuccessful: input.IntroductionSuccessful,
		Context:                sanitizeString(input.Context),
	}
	if conn.IntroductionDate != nil {
		d := conn.IntroductionDate.UTC()
		conn.IntroductionDate = &d
	}

	owner := sanitizeString(input.OwnerID)
	err = s.store.UpsertConnection(ctx, owner, conn)
	s.metrics.Ingested("connection", err)
	if err != nil {
		return "", err
	}
	s.invalidate(ctx, owner)
	return id, nil
}

func (s *NetworkService) invalidate(ctx context.Context, ownerID string) {
	inv, ok := s.source.(SnapshotInvalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn("snapshot invalidation failed", slog.String("owner_id", ownerID), slog.Any("error", err))
	}
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
