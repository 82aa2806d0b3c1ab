package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	"github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/domain/events"
)

type fakeSignupRepo struct {
	pool []*entities.CandidateSignup
	err  error
}

func (f *fakeSignupRepo) GetPendingByEvent(ctx context.Context, eventID valueobjects.EventID) ([]*entities.CandidateSignup, error) {
	return f.pool, f.err
}

func (f *fakeSignupRepo) MarkAssigned(ctx context.Context, signupIDs []valueobjects.SignupID, squadID valueobjects.SquadID) error {
	return nil
}

type fakeProfileRepo struct {
	profiles map[valueobjects.UserID]*valueobjects.PreferenceProfile
}

func (f *fakeProfileRepo) GetByUserIDs(ctx context.Context, userIDs []valueobjects.UserID) (map[valueobjects.UserID]*valueobjects.PreferenceProfile, error) {
	if f.profiles == nil {
		return map[valueobjects.UserID]*valueobjects.PreferenceProfile{}, nil
	}
	return f.profiles, nil
}

type fakeReferralRepo struct {
	edges  []entities.ReferralEdge
	err    error
	called bool
}

func (f *fakeReferralRepo) GetByEvent(ctx context.Context, eventID valueobjects.EventID) ([]entities.ReferralEdge, error) {
	f.called = true
	return f.edges, f.err
}

type fakeEventBus struct {
	published []events.DomainEvent
}

func (f *fakeEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	f.published = append(f.published, batch...)
	return nil
}

func (f *fakeEventBus) Subscribe(eventType string, handler ports.EventHandler) error { return nil }

func (f *fakeEventBus) Unsubscribe(eventType string, handler ports.EventHandler) error { return nil }

func newHandler(signups *fakeSignupRepo, profiles *fakeProfileRepo, referrals *fakeReferralRepo) *ProposeSquadsHandler {
	return newHandlerWithBus(signups, profiles, referrals, nil)
}

func newHandlerWithBus(signups *fakeSignupRepo, profiles *fakeProfileRepo, referrals *fakeReferralRepo, eventBus ports.EventBus) *ProposeSquadsHandler {
	cfg := config.DefaultDomainConfig()
	cfg.EnableRunMetrics = false
	return NewProposeSquadsHandler(signups, profiles, referrals, eventBus, cfg, nil, zap.NewNop())
}

func makePool(t *testing.T, n int) []*entities.CandidateSignup {
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

func makeEdge(t *testing.T, a, b string) entities.ReferralEdge {
	t.Helper()
	userA, err := valueobjects.NewUserID(a)
	require.NoError(t, err)
	userB, err := valueobjects.NewUserID(b)
	require.NoError(t, err)
	edge, err := entities.NewReferralEdge(userA, userB)
	require.NoError(t, err)
	return edge
}

func TestProposeSquads_EmptyPool(t *testing.T) {
	handler := newHandler(&fakeSignupRepo{}, &fakeProfileRepo{}, &fakeReferralRepo{})

	result, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:             "event-1",
		PrioritizeReferrals: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Squads)
	assert.Empty(t, result.UnassignedUsers)
	assert.Equal(t, 0, result.TotalPending)
	assert.NotEmpty(t, result.Message)
}

func TestProposeSquads_ReferralPairKeptTogether(t *testing.T) {
	pool := makePool(t, 9)
	referrals := &fakeReferralRepo{edges: []entities.ReferralEdge{makeEdge(t, "u1", "u2")}}
	handler := newHandler(&fakeSignupRepo{pool: pool}, &fakeProfileRepo{}, referrals)

	result, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:             "event-1",
		SquadSize:           3,
		PrioritizeReferrals: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, result.Squads, 3)
	assert.Empty(t, result.UnassignedUsers)
	assert.Equal(t, 9, result.TotalPending)

	first := result.Squads[0]
	assert.Equal(t, "Squad A", first.SuggestedName)
	assert.Equal(t, 2, first.ReferralBonds)
	require.Len(t, first.Members, 3)
	assert.Equal(t, "u1", first.Members[0].UserID.String())
	assert.Equal(t, "u2", first.Members[1].UserID.String())

	assert.Equal(t, "Squad B", result.Squads[1].SuggestedName)
	assert.Equal(t, "Squad C", result.Squads[2].SuggestedName)

	placed := 0
	for _, s := range result.Squads {
		placed += len(s.Members)
	}
	assert.Equal(t, result.TotalPending, placed+len(result.UnassignedUsers))
}

func TestProposeSquads_DefaultSquadSize(t *testing.T) {
	pool := makePool(t, 8)
	handler := newHandler(&fakeSignupRepo{pool: pool}, &fakeProfileRepo{}, &fakeReferralRepo{})

	result, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:             "event-1",
		PrioritizeReferrals: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Squads, 1)
	assert.Len(t, result.Squads[0].Members, 6)
	assert.Len(t, result.UnassignedUsers, 2)
}

func TestProposeSquads_ReferralsSkippedWhenDisabled(t *testing.T) {
	pool := makePool(t, 6)
	referrals := &fakeReferralRepo{err: errors.New("should not be called")}
	handler := newHandler(&fakeSignupRepo{pool: pool}, &fakeProfileRepo{}, referrals)

	result, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:             "event-1",
		SquadSize:           6,
		PrioritizeReferrals: false,
	})
	require.NoError(t, err)

	assert.False(t, referrals.called)
	require.Len(t, result.Squads, 1)
	assert.Equal(t, 0, result.Squads[0].ReferralBonds)
}

func TestProposeSquads_ProfilesDriveFill(t *testing.T) {
	pool := makePool(t, 3)
	vibe50, vibe90, vibe60 := 50, 90, 60
	profiles := map[valueobjects.UserID]*valueobjects.PreferenceProfile{
		pool[0].UserID: {VibePreference: &vibe50},
		pool[1].UserID: {VibePreference: &vibe90},
		pool[2].UserID: {VibePreference: &vibe60},
	}
	handler := newHandler(&fakeSignupRepo{pool: pool}, &fakeProfileRepo{profiles: profiles}, &fakeReferralRepo{})

	result, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:             "event-1",
		SquadSize:           2,
		PrioritizeReferrals: false,
	})
	require.NoError(t, err)

	require.Len(t, result.Squads, 1)
	require.Len(t, result.Squads[0].Members, 2)
	assert.Equal(t, "u1", result.Squads[0].Members[0].UserID.String())
	assert.Equal(t, "u3", result.Squads[0].Members[1].UserID.String())
	require.Len(t, result.UnassignedUsers, 1)
	assert.Equal(t, "u2", result.UnassignedUsers[0].UserID.String())
}

func TestProposeSquads_PublishesProposedEvent(t *testing.T) {
	pool := makePool(t, 8)
	eventBus := &fakeEventBus{}
	handler := newHandlerWithBus(&fakeSignupRepo{pool: pool}, &fakeProfileRepo{}, &fakeReferralRepo{}, eventBus)

	_, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:             "event-1",
		PrioritizeReferrals: true,
	})
	require.NoError(t, err)

	require.Len(t, eventBus.published, 1)
	proposed, ok := eventBus.published[0].(events.SquadsProposed)
	require.True(t, ok)
	assert.Equal(t, "squads.proposed", proposed.GetEventType())
	assert.Equal(t, "event-1", proposed.GetAggregateID())
	assert.Equal(t, 1, proposed.SquadCount)
	assert.Equal(t, 2, proposed.UnassignedCount)
	assert.Equal(t, 8, proposed.TotalPending)
}

func TestProposeSquads_NoEventOnEmptyPool(t *testing.T) {
	eventBus := &fakeEventBus{}
	handler := newHandlerWithBus(&fakeSignupRepo{}, &fakeProfileRepo{}, &fakeReferralRepo{}, eventBus)

	result, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{EventID: "event-1"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, eventBus.published)
}

func TestProposeSquads_RepeatRunsMatch(t *testing.T) {
	// The same inputs produce the same proposals run after run: names,
	// membership, ordering, and scores all repeat exactly. Only the
	// generated squad identities differ between runs.
	pool := makePool(t, 10)
	vibe40, vibe55, vibe80 := 40, 55, 80
	profiles := map[valueobjects.UserID]*valueobjects.PreferenceProfile{
		pool[0].UserID: {VibePreference: &vibe40},
		pool[4].UserID: {VibePreference: &vibe55},
		pool[8].UserID: {VibePreference: &vibe80},
	}
	referrals := &fakeReferralRepo{edges: []entities.ReferralEdge{
		makeEdge(t, "u2", "u3"),
		makeEdge(t, "u7", "u8"),
	}}
	handler := newHandler(&fakeSignupRepo{pool: pool}, &fakeProfileRepo{profiles: profiles}, referrals)

	query := queries.ProposeSquadsQuery{
		EventID:             "event-1",
		SquadSize:           4,
		PrioritizeReferrals: true,
	}
	first, err := handler.Handle(context.Background(), query)
	require.NoError(t, err)
	second, err := handler.Handle(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first.TotalPending, second.TotalPending)
	require.Equal(t, first.UnassignedUsers, second.UnassignedUsers)
	require.Len(t, second.Squads, len(first.Squads))
	for i := range first.Squads {
		assert.Equal(t, first.Squads[i].SuggestedName, second.Squads[i].SuggestedName)
		assert.Equal(t, first.Squads[i].CompatibilityScore, second.Squads[i].CompatibilityScore)
		assert.Equal(t, first.Squads[i].ReferralBonds, second.Squads[i].ReferralBonds)
		assert.Equal(t, first.Squads[i].Members, second.Squads[i].Members)
	}
}

func TestProposeSquads_InvalidSquadSize(t *testing.T) {
	handler := newHandler(&fakeSignupRepo{pool: makePool(t, 4)}, &fakeProfileRepo{}, &fakeReferralRepo{})

	_, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{
		EventID:   "event-1",
		SquadSize: 50,
	})
	assert.Error(t, err)
}

func TestProposeSquads_MissingEventID(t *testing.T) {
	handler := newHandler(&fakeSignupRepo{}, &fakeProfileRepo{}, &fakeReferralRepo{})

	_, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{})
	assert.Error(t, err)
}

func TestProposeSquads_SignupRepoFailure(t *testing.T) {
	handler := newHandler(&fakeSignupRepo{err: errors.New("dynamo down")}, &fakeProfileRepo{}, &fakeReferralRepo{})

	_, err := handler.Handle(context.Background(), queries.ProposeSquadsQuery{EventID: "event-1"})
	assert.Error(t, err)
}
