package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/commands"
	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	"github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/domain/events"
	"github.com/OpenClique85/openclique-sub009/infrastructure/di"
	"github.com/OpenClique85/openclique-sub009/pkg/common"
)

// In-memory port implementations. The application layer is wired
// through the real buses and handlers; only storage and transport are
// replaced.

type memorySignupRepo struct {
	pool []*entities.CandidateSignup
}

func (m *memorySignupRepo) GetPendingByEvent(ctx context.Context, eventID valueobjects.EventID) ([]*entities.CandidateSignup, error) {
	return m.pool, nil
}

func (m *memorySignupRepo) MarkAssigned(ctx context.Context, signupIDs []valueobjects.SignupID, squadID valueobjects.SquadID) error {
	return nil
}

type memoryProfileRepo struct{}

func (m *memoryProfileRepo) GetByUserIDs(ctx context.Context, userIDs []valueobjects.UserID) (map[valueobjects.UserID]*valueobjects.PreferenceProfile, error) {
	return map[valueobjects.UserID]*valueobjects.PreferenceProfile{}, nil
}

type memoryReferralRepo struct {
	edges []entities.ReferralEdge
}

func (m *memoryReferralRepo) GetByEvent(ctx context.Context, eventID valueobjects.EventID) ([]entities.ReferralEdge, error) {
	return m.edges, nil
}

type memorySquadWriter struct {
	saved    map[valueobjects.SquadID]*aggregates.SquadProposal
	order    []valueobjects.SquadID
	getCalls int
}

func newMemorySquadWriter() *memorySquadWriter {
	return &memorySquadWriter{saved: make(map[valueobjects.SquadID]*aggregates.SquadProposal)}
}

func (m *memorySquadWriter) SaveConfirmed(ctx context.Context, proposal *aggregates.SquadProposal) error {
	m.saved[proposal.ID] = proposal
	m.order = append(m.order, proposal.ID)
	return nil
}

func (m *memorySquadWriter) GetByID(ctx context.Context, squadID valueobjects.SquadID) (*aggregates.SquadProposal, error) {
	m.getCalls++
	proposal, ok := m.saved[squadID]
	if !ok {
		return nil, fmt.Errorf("squad %s not found", squadID)
	}
	return proposal, nil
}

func (m *memorySquadWriter) ListByEvent(ctx context.Context, eventID valueobjects.EventID) ([]aggregates.SquadRecord, error) {
	var records []aggregates.SquadRecord
	for _, id := range m.order {
		proposal := m.saved[id]
		if !proposal.EventID.Equals(eventID) {
			continue
		}
		records = append(records, aggregates.SquadRecord{
			ID:                 proposal.ID,
			EventID:            proposal.EventID,
			Name:               proposal.SuggestedName,
			MemberCount:        proposal.Size(),
			CompatibilityScore: proposal.CompatibilityScore,
			ReferralBonds:      proposal.ReferralBonds,
		})
	}
	return records, nil
}

type memoryLock struct {
	acquired int
	released int
}

func (m *memoryLock) Acquire(ctx context.Context, eventID valueobjects.EventID, owner string, hold time.Duration) (ports.LockHandle, error) {
	m.acquired++
	return &memoryLockHandle{lock: m}, nil
}

type memoryLockHandle struct {
	lock *memoryLock
}

func (h *memoryLockHandle) Release(ctx context.Context) error {
	h.lock.released++
	return nil
}

type recordingEventBus struct {
	published []events.DomainEvent
}

func (b *recordingEventBus) countByType(eventType string) int {
	n := 0
	for _, event := range b.published {
		if event.GetEventType() == eventType {
			n++
		}
	}
	return n
}

func (b *recordingEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	b.published = append(b.published, batch...)
	return nil
}

func (b *recordingEventBus) Subscribe(eventType string, handler ports.EventHandler) error {
	return nil
}

func (b *recordingEventBus) Unsubscribe(eventType string, handler ports.EventHandler) error {
	return nil
}

type recordingDispatcher struct {
	notified []valueobjects.SquadID
}

func (d *recordingDispatcher) NotifySquadConfirmed(ctx context.Context, proposal *aggregates.SquadProposal) error {
	d.notified = append(d.notified, proposal.ID)
	return nil
}

func candidatePool(t *testing.T, n int) []*entities.CandidateSignup {
	t.Helper()
	pool := make([]*entities.CandidateSignup, n)
	for i := range pool {
		user := fmt.Sprintf("u%d", i+1)
		userID, err := valueobjects.NewUserID(user)
		require.NoError(t, err)
		signupID, err := valueobjects.NewSignupID("signup-" + user)
		require.NoError(t, err)
		pool[i], err = entities.NewCandidateSignup(signupID, userID, "User "+user, user+"@example.com", nil)
		require.NoError(t, err)
	}
	return pool
}

func referralEdge(t *testing.T, a, b string) entities.ReferralEdge {
	t.Helper()
	userA, err := valueobjects.NewUserID(a)
	require.NoError(t, err)
	userB, err := valueobjects.NewUserID(b)
	require.NoError(t, err)
	edge, err := entities.NewReferralEdge(userA, userB)
	require.NoError(t, err)
	return edge
}

// TestProposeConfirmRetrieveFlow drives the full application flow
// through the real command and query buses: propose squads for an
// event, confirm the first proposal, then read it back and list it.
func TestProposeConfirmRetrieveFlow(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	domainCfg := config.DefaultDomainConfig()

	signupRepo := &memorySignupRepo{pool: candidatePool(t, 9)}
	referralRepo := &memoryReferralRepo{edges: []entities.ReferralEdge{referralEdge(t, "u1", "u2")}}
	squadWriter := newMemorySquadWriter()
	lock := &memoryLock{}
	eventBus := &recordingEventBus{}
	dispatcher := &recordingDispatcher{}

	commandBus := di.ProvideCommandBus(squadWriter, lock, eventBus, dispatcher, logger)
	queryBus := di.ProvideQueryBus(signupRepo, &memoryProfileRepo{}, referralRepo, squadWriter, eventBus, di.NewInMemoryCache(), domainCfg, nil, logger)

	// Propose.
	raw, err := queryBus.Ask(ctx, queries.ProposeSquadsQuery{
		EventID:             "event-1",
		SquadSize:           3,
		PrioritizeReferrals: true,
	})
	require.NoError(t, err)
	proposed, ok := raw.(*queries.ProposeSquadsResult)
	require.True(t, ok)
	require.Len(t, proposed.Squads, 3)
	assert.Equal(t, 9, proposed.TotalPending)

	first := proposed.Squads[0]
	assert.Equal(t, "Squad A", first.SuggestedName)
	assert.Equal(t, 2, first.ReferralBonds)

	// Confirm the first proposal, keeping the proposed identity.
	err = commandBus.Send(ctx, commands.ConfirmSquadCommand{
		EventID:            "event-1",
		SquadID:            first.ID.String(),
		Name:               "The Pathfinders",
		Members:            first.Members,
		CompatibilityScore: first.CompatibilityScore,
		ReferralBonds:      first.ReferralBonds,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
	assert.Equal(t, 1, eventBus.countByType("squads.proposed"))
	assert.Equal(t, 1, eventBus.countByType("squad.confirmed"))
	assert.Equal(t, 3, eventBus.countByType("squad.member_notified"))
	require.Len(t, dispatcher.notified, 1)
	assert.Equal(t, first.ID, dispatcher.notified[0])

	// Read back.
	raw, err = queryBus.Ask(ctx, queries.GetSquadQuery{SquadID: first.ID.String()})
	require.NoError(t, err)
	confirmed, ok := raw.(*aggregates.SquadProposal)
	require.True(t, ok)
	assert.Equal(t, first.ID, confirmed.ID)
	assert.Len(t, confirmed.Members, 3)

	// A repeat read is served from the query cache, not storage.
	storeReads := squadWriter.getCalls
	raw, err = queryBus.Ask(ctx, queries.GetSquadQuery{SquadID: first.ID.String()})
	require.NoError(t, err)
	cached, ok := raw.(*aggregates.SquadProposal)
	require.True(t, ok)
	assert.Equal(t, first.ID, cached.ID)
	assert.Equal(t, storeReads, squadWriter.getCalls)

	// List.
	raw, err = queryBus.Ask(ctx, queries.ListSquadsQuery{
		EventID:    "event-1",
		Pagination: common.DefaultPaginationParams(),
	})
	require.NoError(t, err)
	page, ok := raw.(*common.PaginatedResult)
	require.True(t, ok)
	records, ok := page.Items.([]aggregates.SquadRecord)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, 3, records[0].MemberCount)
	assert.Equal(t, 1, page.Pagination.Total)
}

// TestConfirmKeepsProposedIdentity verifies a confirmation carrying a
// proposal ID reaches storage under that identity, so the writer's
// conditional put can reject a duplicate confirmation.
func TestConfirmKeepsProposedIdentity(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	squadWriter := newMemorySquadWriter()
	lock := &memoryLock{}
	commandBus := di.ProvideCommandBus(squadWriter, lock, &recordingEventBus{}, &recordingDispatcher{}, logger)

	pool := candidatePool(t, 2)
	members := []aggregates.SquadMember{
		{UserID: pool[0].UserID, SignupID: pool[0].SignupID, DisplayName: pool[0].DisplayName, Email: pool[0].Email},
		{UserID: pool[1].UserID, SignupID: pool[1].SignupID, DisplayName: pool[1].DisplayName, Email: pool[1].Email},
	}

	squadID := valueobjects.GenerateSquadID()
	err := commandBus.Send(ctx, commands.ConfirmSquadCommand{
		EventID:            "event-1",
		SquadID:            squadID.String(),
		Name:               "Side Quest",
		Members:            members,
		CompatibilityScore: 0.5,
	})
	require.NoError(t, err)

	stored, err := squadWriter.GetByID(ctx, squadID)
	require.NoError(t, err)
	assert.Equal(t, squadID, stored.ID)
}
