package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	"github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/services"
	"github.com/OpenClique85/openclique-sub009/domain/core/validators"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/domain/events"
	"github.com/OpenClique85/openclique-sub009/pkg/observability"
)

// ProposeSquadsHandler loads an event's pending signups, profiles, and
// referral edges, runs the formation engine, and shapes the response.
// Read-only: proposals are returned to the caller, never persisted here.
type ProposeSquadsHandler struct {
	signupRepo   ports.SignupRepository
	profileRepo  ports.ProfileRepository
	referralRepo ports.ReferralRepository
	eventBus     ports.EventBus
	domainCfg    *config.DomainConfig
	validator    *validators.PoolValidator
	builder      *services.ReferralGraphBuilder
	assembler    *services.SquadAssembler
	aggregator   *services.ResultAggregator
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewProposeSquadsHandler creates a propose handler and its engine parts
func NewProposeSquadsHandler(
	signupRepo ports.SignupRepository,
	profileRepo ports.ProfileRepository,
	referralRepo ports.ReferralRepository,
	eventBus ports.EventBus,
	domainCfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ProposeSquadsHandler {
	scorer := services.NewCompatibilityScorer()
	return &ProposeSquadsHandler{
		signupRepo:   signupRepo,
		profileRepo:  profileRepo,
		referralRepo: referralRepo,
		eventBus:     eventBus,
		domainCfg:    domainCfg,
		validator:    validators.NewPoolValidator(domainCfg),
		builder:      services.NewReferralGraphBuilder(),
		assembler:    services.NewSquadAssembler(scorer),
		aggregator:   services.NewResultAggregator(scorer),
		metrics:      metrics,
		logger:       logger,
	}
}

// Handle executes the squad formation query
func (h *ProposeSquadsHandler) Handle(ctx context.Context, query queries.ProposeSquadsQuery) (*queries.ProposeSquadsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	eventID, err := valueobjects.NewEventID(query.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	squadSize := query.SquadSize
	if squadSize == 0 {
		squadSize = h.domainCfg.DefaultSquadSize
	}
	if err := h.validator.ValidateSquadSize(squadSize, h.domainCfg); err != nil {
		return nil, err
	}

	started := time.Now()

	pool, err := h.signupRepo.GetPendingByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending signups: %w", err)
	}

	if len(pool) == 0 {
		h.logger.Info("No pending signups for event",
			zap.String("event_id", eventID.String()),
		)
		return &queries.ProposeSquadsResult{
			Success:         true,
			Squads:          nil,
			UnassignedUsers: nil,
			TotalPending:    0,
			Message:         "No pending signups for this event.",
		}, nil
	}

	if err := h.attachProfiles(ctx, pool); err != nil {
		return nil, err
	}
	if err := h.validator.ValidatePool(pool); err != nil {
		return nil, err
	}

	clusters := map[valueobjects.UserID]valueobjects.ClusterID{}
	if query.PrioritizeReferrals {
		edges, err := h.referralRepo.GetByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load referral edges: %w", err)
		}
		if err := h.validator.ValidateEdges(edges); err != nil {
			return nil, err
		}
		clusters = h.builder.BuildClusters(edges, pool)
	}

	squads, leftovers := h.assembler.Assemble(pool, clusters, squadSize)

	result, err := h.aggregator.Aggregate(eventID, squads, leftovers, len(pool))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate engine result: %w", err)
	}

	if h.metrics != nil && h.domainCfg.EnableRunMetrics {
		h.metrics.RecordMatchingRun(ctx, len(pool), len(result.Squads), time.Since(started))
	}

	if h.eventBus != nil {
		proposed := events.NewSquadsProposed(eventID, len(result.Squads), len(result.Unassigned), result.TotalPending, time.Now().UTC())
		if err := h.eventBus.Publish(ctx, proposed); err != nil {
			// The run result is already in hand; event delivery is
			// advisory for downstream consumers.
			h.logger.Warn("Failed to publish squads.proposed",
				zap.String("event_id", eventID.String()),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("Squad proposals generated",
		zap.String("event_id", eventID.String()),
		zap.Int("pool_size", len(pool)),
		zap.Int("squad_count", len(result.Squads)),
		zap.Int("unassigned", len(result.Unassigned)),
		zap.Int("squad_size", squadSize),
		zap.Bool("prioritize_referrals", query.PrioritizeReferrals),
		zap.Duration("duration", time.Since(started)),
	)

	return &queries.ProposeSquadsResult{
		Success:         true,
		Squads:          result.Squads,
		UnassignedUsers: result.Unassigned,
		TotalPending:    result.TotalPending,
	}, nil
}

// attachProfiles merges stored preference profiles into the pool.
// Candidates without a profile keep nil and score neutrally.
func (h *ProposeSquadsHandler) attachProfiles(ctx context.Context, pool []*entities.CandidateSignup) error {
	userIDs := make([]valueobjects.UserID, len(pool))
	for i, c := range pool {
		userIDs[i] = c.UserID
	}

	profiles, err := h.profileRepo.GetByUserIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to load preference profiles: %w", err)
	}

	for _, c := range pool {
		if c.Profile != nil {
			continue
		}
		if p, ok := profiles[c.UserID]; ok {
			c.Profile = p
		}
	}
	return nil
}
